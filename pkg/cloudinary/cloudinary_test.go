package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMaterialPublicID(t *testing.T) {
	at := time.Unix(1700000000, 0)

	require.Equal(t, "week-1-notes-1700000000", materialPublicID("Week 1 Notes.pdf", at))
	require.Equal(t, "material-1700000000", materialPublicID("???.png", at))
	require.Equal(t, "passwd-1700000000", materialPublicID("../../etc/passwd", at))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	store, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/quizhub/materials/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "quizhub/materials", store.folder)
}

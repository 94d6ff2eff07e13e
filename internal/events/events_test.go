package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNATSPublisherWithoutConnectionDropsEvents(t *testing.T) {
	publisher := NewNATSPublisher(nil, "quizhub", zerolog.Nop())
	require.NoError(t, publisher.Publish(context.Background(), AttemptCompleted, map[string]uint{"attempt_id": 1}))

	var unset *NATSPublisher
	require.NoError(t, unset.Publish(context.Background(), AttemptStarted, nil))
}

func TestNATSPublisherSubject(t *testing.T) {
	require.Equal(t, "quizhub.attempt.started", NewNATSPublisher(nil, "quizhub", zerolog.Nop()).Subject(AttemptStarted))
	require.Equal(t, "app.quizhub.quiz.deleted", NewNATSPublisher(nil, "app:quizhub:", zerolog.Nop()).Subject(QuizDeleted))
	require.Equal(t, EnrollmentCreated, NewNATSPublisher(nil, "", zerolog.Nop()).Subject(EnrollmentCreated))
}

func TestConnectWithoutURLIsDisabled(t *testing.T) {
	conn, err := Connect("", "quizhub")
	require.NoError(t, err)
	require.Nil(t, conn)
}

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = Noop{}
	require.NoError(t, publisher.Publish(context.Background(), EnrollmentCreated, nil))
}

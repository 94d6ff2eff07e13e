package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizhub-api/internal/models"
)

type memoryMaterialStorage struct {
	names    []string
	payloads [][]byte
}

func (m *memoryMaterialStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.names = append(m.names, name)
	m.payloads = append(m.payloads, payload)
	return "https://cdn.example.com/materials/" + name, nil
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestAttachMaterialStoresAllowedTypes(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	quiz := env.capitalsQuiz(t, educator, nil)
	storage := &memoryMaterialStorage{}
	svc := NewMaterialService(env.quizzes, env.users, storage, 1, testLogger())

	updated, err := svc.Attach(context.Background(), educator, quiz.ID, multipartFile(t, "Week 1 Notes.pdf", pdfBytes))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/materials/week-1-notes.pdf", updated.MaterialURL)
	require.Equal(t, pdfBytes, storage.payloads[0])

	_, err = svc.Attach(context.Background(), educator, quiz.ID, multipartFile(t, "reading.txt", []byte("chapter one, plain words")))
	require.NoError(t, err)
	require.Len(t, storage.names, 2)
}

func TestAttachMaterialRejections(t *testing.T) {
	env := newTestEnv(t)
	educator := env.user(t, models.RoleEducator)
	other := env.user(t, models.RoleEducator)
	quiz := env.capitalsQuiz(t, educator, nil)
	storage := &memoryMaterialStorage{}
	svc := NewMaterialService(env.quizzes, env.users, storage, 1, testLogger())

	zipBytes := []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")
	_, err := svc.Attach(context.Background(), educator, quiz.ID, multipartFile(t, "archive.pdf", zipBytes))
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	large := append(append([]byte(nil), pdfBytes...), bytes.Repeat([]byte("a"), 1024*1024)...)
	_, err = svc.Attach(context.Background(), educator, quiz.ID, multipartFile(t, "big.pdf", large))
	require.ErrorIs(t, err, ErrUploadTooLarge)

	_, err = svc.Attach(context.Background(), other, quiz.ID, multipartFile(t, "notes.pdf", pdfBytes))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Attach(context.Background(), educator, quiz.ID, nil)
	require.ErrorIs(t, err, ErrValidation)

	require.Empty(t, storage.names)

	disabled := NewMaterialService(env.quizzes, env.users, nil, 1, testLogger())
	_, err = disabled.Attach(context.Background(), educator, quiz.ID, multipartFile(t, "notes.pdf", pdfBytes))
	require.ErrorIs(t, err, ErrUploadUnavailable)
}

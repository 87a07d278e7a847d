package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/visualflow/visualflow-api/internal/domain/auth"
	"github.com/visualflow/visualflow-api/internal/domain/model"
)

func TestFailingSessionStore_DefaultError(t *testing.T) {
	store := &FailingSessionStore{}
	ctx := context.Background()

	_, err := store.Issue(ctx, domainauth.BuiltinRef("a@x.io"))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Resolve(ctx, "t")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, store.Rebind(ctx, "t", "b@x.io"), ErrStoreUnavailable)
	require.ErrorIs(t, store.Revoke(ctx, "t"), ErrStoreUnavailable)
}

func TestFailingSessionStore_CustomError(t *testing.T) {
	boom := errors.New("boom")
	store := &FailingSessionStore{Err: boom}

	_, err := store.Resolve(context.Background(), "t")
	assert.ErrorIs(t, err, boom)
}

func TestStubAnalysisClient_EchoesByDefault(t *testing.T) {
	stub := &StubAnalysisClient{}

	resp, err := stub.Analyze(context.Background(), []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"a":1}`, string(resp.Body))
	assert.Len(t, stub.Calls(), 1)
}

func TestStubAnalysisClient_CustomFunc(t *testing.T) {
	stub := &StubAnalysisClient{}
	stub.SetAnalyzeFunc(func(context.Context, []byte) (*model.AnalysisResponse, error) {
		return &model.AnalysisResponse{StatusCode: 503}, nil
	})

	resp, err := stub.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

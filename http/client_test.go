package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/siterag"
	sitehttp "github.com/fwojciec/siterag/http"
	"github.com/fwojciec/siterag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Health(t *testing.T) {
	t.Parallel()

	t.Run("healthy server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(newTestServer(nil).Handler())
		defer srv.Close()

		assert.NoError(t, sitehttp.NewClient(srv.URL+"/").Health(context.Background()))
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		err := sitehttp.NewClient(srv.URL).Health(context.Background())
		require.Error(t, err)
		assert.Contains(t, siterag.ErrorMessage(err), "unreachable")
	})
}

func TestClient_Ask(t *testing.T) {
	t.Parallel()

	t.Run("round trips through the server", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, req *siterag.AskRequest) (*siterag.Answer, error) {
				return &siterag.Answer{
					Answer:             "Isha is at 9:15 PM.",
					History:            append(append([]string(nil), req.History...), "User: "+req.Question, "Bot: Isha is at 9:15 PM."),
					ContextChunksFound: 2,
				}, nil
			},
		}
		srv := httptest.NewServer(newTestServer(asker).Handler())
		defer srv.Close()

		answer, err := sitehttp.NewClient(srv.URL).Ask(context.Background(), &siterag.AskRequest{
			Question: "When is isha?",
			History:  []string{"User: salam", "Bot: wa alaykum salam"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Isha is at 9:15 PM.", answer.Answer)
		assert.Equal(t, 2, answer.ContextChunksFound)
		assert.Len(t, answer.History, 4)
	})

	t.Run("maps error detail and code", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ *siterag.AskRequest) (*siterag.Answer, error) {
				return nil, siterag.Errorf(siterag.EINVALID, "question is required")
			},
		}
		srv := httptest.NewServer(newTestServer(asker).Handler())
		defer srv.Close()

		_, err := sitehttp.NewClient(srv.URL).Ask(context.Background(), &siterag.AskRequest{})

		require.Error(t, err)
		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
		assert.Equal(t, "question is required", siterag.ErrorMessage(err))
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(newTestServer(nil).Handler())
		defer srv.Close()

		_, err := sitehttp.NewClient(srv.URL).Ask(context.Background(), &siterag.AskRequest{Question: "hi"})

		assert.Equal(t, siterag.EINTERNAL, siterag.ErrorCode(err))
		assert.Equal(t, "Model not initialized.", siterag.ErrorMessage(err))
	})
}

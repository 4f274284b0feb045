package xhsnote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/longkey1/xhsnote/internal/tikhub"
)

type fakeUpstream struct {
	mu    sync.Mutex
	body  []byte
	err   error
	panic any
	calls []string
}

func (f *fakeUpstream) FetchFeedNotes(ctx context.Context, noteID string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, noteID)
	f.mu.Unlock()
	if f.panic != nil {
		panic(f.panic)
	}
	return f.body, f.err
}

type recordedFetch struct {
	status, kind string
}

type fakeRecorder struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (r *fakeRecorder) RecordFetch(status, kind string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, recordedFetch{status, kind})
}

func fetch(t *testing.T, up Upstream, req FetchRequest) Result {
	t.Helper()
	return NewFetcher(up).FetchNote(context.Background(), req)
}

func TestFetchNote_MissingParameter_NoNetworkCall(t *testing.T) {
	up := &fakeUpstream{body: []byte(fullNoteBody)}

	result := fetch(t, up, FetchRequest{})

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, msgMissingParameter, result.Message)
	assert.Nil(t, result.Data)
	assert.Empty(t, up.calls)
}

func TestFetchNote_ExtractionFailed(t *testing.T) {
	up := &fakeUpstream{body: []byte(fullNoteBody)}

	result := fetch(t, up, FetchRequest{ShareURL: "https://xhs.example.com/"})

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, msgExtraction, result.Message)
	assert.Equal(t, KindExtraction, result.Err.Kind)
	assert.Empty(t, up.calls)
}

func TestFetchNote_ShareURLResolvesIdentifier(t *testing.T) {
	up := &fakeUpstream{body: []byte(fullNoteBody)}

	result := fetch(t, up, FetchRequest{ShareURL: "https://xhs.example.com/discovery/item/abc123?utm=x"})

	require.True(t, result.OK(), result.Message)
	assert.Equal(t, []string{"abc123"}, up.calls)
}

func TestFetchNote_Timeout(t *testing.T) {
	up := &fakeUpstream{err: errors.Wrap(tikhub.ErrTimeout, "context deadline exceeded")}

	result := fetch(t, up, FetchRequest{NoteID: "abc123"})

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, msgTimeout, result.Message)
	assert.Equal(t, KindTimeout, result.Err.Kind)
	assert.Nil(t, result.Data)
}

func TestFetchNote_NetworkError(t *testing.T) {
	up := &fakeUpstream{err: errors.New("dial tcp 127.0.0.1:1: connection refused")}

	result := fetch(t, up, FetchRequest{NoteID: "abc123"})

	assert.Equal(t, KindNetwork, result.Err.Kind)
	assert.Equal(t, "network request failed: dial tcp 127.0.0.1:1: connection refused", result.Message)
}

func TestFetchNote_UpstreamErrorSurfacesMessage(t *testing.T) {
	up := &fakeUpstream{body: []byte(`{"code": 404, "message": "not found"}`)}

	result := fetch(t, up, FetchRequest{NoteID: "abc123"})

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "not found", result.Message)
	assert.Equal(t, KindUpstream, result.Err.Kind)
}

func TestFetchNote_UpstreamErrorDefaultMessage(t *testing.T) {
	up := &fakeUpstream{body: []byte(`{"code": 500}`)}

	result := fetch(t, up, FetchRequest{NoteID: "abc123"})

	assert.Equal(t, msgUpstreamDefault, result.Message)
}

func TestFetchNote_CodeComparedAsNumber(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{name: "integer 200", body: `{"code":200,"data":{"note_list":[{"id":"a"}]}}`, ok: true},
		{name: "float 200", body: `{"code":200.0,"data":{"note_list":[{"id":"a"}]}}`, ok: true},
		{name: "string 200", body: `{"code":"200","data":{"note_list":[{"id":"a"}]}}`},
		{name: "missing code", body: `{"data":{"note_list":[{"id":"a"}]}}`},
		{name: "null code", body: `{"code":null,"data":{"note_list":[{"id":"a"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fetch(t, &fakeUpstream{body: []byte(tt.body)}, FetchRequest{NoteID: "a"})
			assert.Equal(t, tt.ok, result.OK(), result.Message)
			if !tt.ok {
				assert.Equal(t, KindUpstream, result.Err.Kind)
			}
		})
	}
}

func TestFetchNote_NoData(t *testing.T) {
	bodies := map[string]string{
		"empty list":   `{"code": 200, "data": {"note_list": []}}`,
		"missing list": `{"code": 200, "data": {}}`,
		"null data":    `{"code": 200, "data": null}`,
		"missing data": `{"code": 200}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			result := fetch(t, &fakeUpstream{body: []byte(body)}, FetchRequest{NoteID: "abc123"})
			assert.Equal(t, StatusError, result.Status)
			assert.Equal(t, msgNoData, result.Message)
			assert.Equal(t, KindNoData, result.Err.Kind)
		})
	}
}

func TestFetchNote_DecodeError(t *testing.T) {
	bodies := map[string]string{
		"html":           `<html>bad gateway</html>`,
		"truncated":      `{"code": 200, "data": {`,
		"empty":          ``,
		"note_list type": `{"code": 200, "data": {"note_list": "oops"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			result := fetch(t, &fakeUpstream{body: []byte(body)}, FetchRequest{NoteID: "abc123"})
			assert.Equal(t, StatusError, result.Status)
			assert.Equal(t, msgDecode, result.Message)
			assert.Equal(t, KindDecode, result.Err.Kind)
		})
	}
}

func TestFetchNote_FullNoteRoundTrip(t *testing.T) {
	result := fetch(t, &fakeUpstream{body: []byte(fullNoteBody)}, FetchRequest{NoteID: "abc123"})

	require.True(t, result.OK(), result.Message)
	require.NotNil(t, result.Data)
	assert.Equal(t, 1, result.Data.Total)
	require.Len(t, result.Data.Notes, 1)

	n := result.Data.Notes[0]
	assert.Equal(t, "abc123", n.NoteID)
	assert.Equal(t, "Weekend in Hangzhou", n.Title)
	assert.Equal(t, "traveler", n.Author.Nickname)
	assert.Equal(t, int64(1024), n.Statistics.Likes)
	assert.Equal(t, "https://www.xiaohongshu.com/discovery/item/abc123?share_from=app", n.URL)
}

func TestFetchNote_SparseNote(t *testing.T) {
	body := `{"code":200,"data":{"note_list":[{"id":"sparse1","title":"t","desc":"d"}]}}`

	result := fetch(t, &fakeUpstream{body: []byte(body)}, FetchRequest{NoteID: "sparse1"})

	require.True(t, result.OK(), result.Message)
	n := result.Data.Notes[0]
	assert.Equal(t, Author{UserID: "", Nickname: "", Avatar: ""}, n.Author)
	assert.Equal(t, []string{}, n.Content.Images)
	assert.Equal(t, Statistics{}, n.Statistics)
	assert.Equal(t, "https://www.xiaohongshu.com/discovery/item/sparse1", n.URL)
}

func TestFetchNote_EnvelopeJSONShape(t *testing.T) {
	result := fetch(t, &fakeUpstream{body: []byte(sparseNoteBody)}, FetchRequest{NoteID: "sparse1"})

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "success",
		"data": {
			"notes": [{
				"note_id": "sparse1",
				"title": "No Title",
				"author": {"user_id": "", "nickname": "", "avatar": ""},
				"content": {"text": "", "images": [], "video": null},
				"statistics": {"likes": 0, "collects": 0, "comments": 0, "shares": 0},
				"time": "",
				"url": "https://www.xiaohongshu.com/discovery/item/sparse1"
			}],
			"total": 1
		}
	}`, string(b))
}

func TestFetchNote_PanicBecomesInternalError(t *testing.T) {
	up := &fakeUpstream{panic: "boom"}

	var result Result
	assert.NotPanics(t, func() {
		result = fetch(t, up, FetchRequest{NoteID: "abc123"})
	})
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "processing failed: boom", result.Message)
	assert.Equal(t, KindInternal, result.Err.Kind)
}

func TestFetchNote_NilUpstream(t *testing.T) {
	result := NewFetcher(nil).FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})
	assert.Equal(t, KindInternal, result.Err.Kind)
}

func TestFetchNote_RecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	f := NewFetcher(&fakeUpstream{body: []byte(fullNoteBody)}, WithRecorder(rec))

	f.FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})
	f.FetchNote(context.Background(), FetchRequest{})

	assert.Equal(t, []recordedFetch{
		{status: StatusSuccess, kind: ""},
		{status: StatusError, kind: "missing_parameter"},
	}, rec.fetches)
}

func TestFetchNote_LogsWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := NewFetcher(&fakeUpstream{body: []byte(`{"code":404,"message":"not found"}`)},
		WithFetcherLogger(zap.New(core)))

	f.FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})

	failed := logs.FilterMessage("fetch failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.Equal(t, "upstream", fields["kind"])
	assert.Equal(t, "not found", fields["message"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestFetchNote_ConcurrentCallsAreIndependent(t *testing.T) {
	f := NewFetcher(&fakeUpstream{body: []byte(fullNoteBody)})

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := FetchRequest{NoteID: "abc123"}
			if i%2 == 1 {
				req = FetchRequest{}
			}
			results[i] = f.FetchNote(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, i%2 == 0, r.OK(), "result %d", i)
	}
}

// Exercises the real client against a local server
func TestFetchNote_WithTikHubClient(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "abc123", r.URL.Query().Get("note_id"))
			w.Write([]byte(fullNoteBody))
		}))
		defer srv.Close()

		client := tikhub.NewClient(tikhub.WithBaseURL(srv.URL), tikhub.WithToken("test-token"))
		result := NewFetcher(client).FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})

		require.True(t, result.OK(), result.Message)
		assert.Equal(t, 1, result.Data.Total)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := tikhub.NewClient(tikhub.WithBaseURL(srv.URL), tikhub.WithTimeout(50*time.Millisecond))
		result := NewFetcher(client).FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})

		assert.Equal(t, StatusError, result.Status)
		assert.Equal(t, msgTimeout, result.Message)
		assert.Nil(t, result.Data)
	})

	t.Run("http status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := tikhub.NewClient(tikhub.WithBaseURL(srv.URL))
		result := NewFetcher(client).FetchNote(context.Background(), FetchRequest{NoteID: "abc123"})

		assert.Equal(t, KindNetwork, result.Err.Kind)
		assert.Contains(t, result.Message, "401")
	})
}

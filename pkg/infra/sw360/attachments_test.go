package sw360_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/infra/sw360"
)

func TestClient_GetReleaseAttachments(t *testing.T) {
	t.Run("unwraps collection", func(t *testing.T) {
		rec, client := newRecorder(t, map[string]response{
			"GET /resource/api/releases/123/attachments": {status: 200,
				body: `{"_embedded": {"sw360:attachments": [{"filename": "src.zip", "attachmentType": "SOURCE"}]}}`},
		})

		attachments, err := client.GetReleaseAttachments(context.Background(), "123")
		gt.NoError(t, err)
		gt.A(t, attachments).Length(1)
		gt.Value(t, attachments[0]["filename"]).Equal("src.zip")
		gt.Value(t, rec.Calls()[0].URI).Equal("/resource/api/releases/123/attachments")
	})

	t.Run("no collection", func(t *testing.T) {
		_, client := newRecorder(t, map[string]response{
			"GET /resource/api/releases/123/attachments": {status: 200, body: `{"_links": {}}`},
		})

		attachments, err := client.GetReleaseAttachments(context.Background(), "123")
		gt.NoError(t, err)
		gt.True(t, attachments == nil)
	})

	t.Run("missing id", func(t *testing.T) {
		rec, client := newRecorder(t, map[string]response{})

		_, err := client.GetReleaseAttachments(context.Background(), "")
		gt.True(t, errors.Is(err, sw360.ErrMissingID))
		gt.A(t, rec.Calls()).Length(0)
	})
}

func TestClient_DownloadReleaseAttachment(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		if r.URL.Path != "/resource/api/releases/123/attachments/A1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("zip-content"))
	}))
	defer server.Close()

	client, err := sw360.New(server.URL, testToken)
	gt.NoError(t, err)

	var buf bytes.Buffer
	n, err := client.DownloadReleaseAttachment(context.Background(), "123", "A1", &buf)
	gt.NoError(t, err)
	gt.Value(t, n).Equal(int64(len("zip-content")))
	gt.Value(t, buf.String()).Equal("zip-content")
	gt.Value(t, accept).Equal("application/*")

	t.Run("missing attachment", func(t *testing.T) {
		_, err := client.DownloadReleaseAttachment(context.Background(), "123", "nope", io.Discard)
		gt.True(t, errors.Is(err, sw360.ErrNotFound))
	})

	t.Run("missing attachment id", func(t *testing.T) {
		_, err := client.DownloadReleaseAttachment(context.Background(), "123", "", io.Discard)
		gt.True(t, errors.Is(err, sw360.ErrMissingID))
	})
}

func TestClient_UploadReleaseAttachment(t *testing.T) {
	var (
		fileName    string
		fileContent string
		meta        model.AttachmentMeta
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/resource/api/releases/123/attachments" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "file":
				fileName = part.FileName()
				fileContent = string(data)
			case "attachment":
				_ = json.Unmarshal(data, &meta)
			}
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"name": "Tethys.Logging"}`))
	}))
	defer server.Close()

	client, err := sw360.New(server.URL, testToken)
	gt.NoError(t, err)

	release, err := client.UploadReleaseAttachment(context.Background(), "123", &model.AttachmentUpload{
		Filename: "src.zip",
		Content:  strings.NewReader("zip-content"),
		Comment:  "uploaded",
	})
	gt.NoError(t, err)
	gt.Value(t, release.Name()).Equal("Tethys.Logging")
	gt.Value(t, fileName).Equal("src.zip")
	gt.Value(t, fileContent).Equal("zip-content")
	gt.Value(t, meta).Equal(model.AttachmentMeta{
		Filename:       "src.zip",
		AttachmentType: model.AttachmentTypeSource,
		CreatedComment: "uploaded",
	})

	t.Run("missing content", func(t *testing.T) {
		_, err := client.UploadReleaseAttachment(context.Background(), "123", &model.AttachmentUpload{Filename: "a"})
		gt.Error(t, err)
	})
}

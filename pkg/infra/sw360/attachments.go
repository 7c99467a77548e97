package sw360

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
)

func missingAttachmentIDError() *Error {
	return &Error{Message: "no attachment id provided", cause: ErrMissingID}
}

// GetReleaseAttachments returns the attachment infos of a release. It returns
// nil without error when the server sends no content or no attachment
// collection.
//
// API endpoint: GET /releases/{id}/attachments
func (c *Client) GetReleaseAttachments(ctx context.Context, releaseID string) ([]model.Document, error) {
	if releaseID == "" {
		return nil, missingIDError()
	}

	endpoint := c.releaseURL(releaseID, "attachments")
	data, err := c.APIGet(ctx, endpoint)
	if err != nil || data == nil {
		return nil, err
	}

	items, ok := model.UnwrapEmbedded(data, model.AttachmentsKey)
	if !ok {
		return nil, nil
	}

	var attachments []model.Document
	if err := json.Unmarshal(items, &attachments); err != nil {
		return nil, wrapError(err, endpoint, "failed to decode attachments from "+endpoint)
	}
	return attachments, nil
}

// DownloadReleaseAttachment writes the content of an attachment of a release
// to w and returns the number of bytes written.
//
// API endpoint: GET /releases/{id}/attachments/{attachmentId}
func (c *Client) DownloadReleaseAttachment(ctx context.Context, releaseID, attachmentID string, w io.Writer) (int64, error) {
	if releaseID == "" {
		return 0, missingIDError()
	}
	if attachmentID == "" {
		return 0, missingAttachmentIDError()
	}

	endpoint := c.releaseURL(releaseID, "attachments", attachmentID)
	data, _, err := c.send(ctx, http.MethodGet, endpoint, nil, "", "application/*")
	if err != nil {
		return 0, err
	}

	n, err := w.Write(data)
	if err != nil {
		return int64(n), wrapError(err, endpoint, "failed to write attachment")
	}
	return int64(n), nil
}

// UploadReleaseAttachment attaches a file to a release. The file and its
// metadata are sent as one multipart request. The server may accept the
// upload (202) before the attachment becomes visible.
//
// API endpoint: POST /releases/{id}/attachments
func (c *Client) UploadReleaseAttachment(ctx context.Context, releaseID string, upload *model.AttachmentUpload) (model.Release, error) {
	if releaseID == "" {
		return nil, missingIDError()
	}
	if upload.Filename == "" || upload.Content == nil {
		return nil, &Error{Message: "attachment filename and content are required"}
	}
	attachmentType := upload.Type
	if attachmentType == "" {
		attachmentType = model.AttachmentTypeSource
	}

	endpoint := c.releaseURL(releaseID, "attachments")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to create file part")
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, wrapError(err, endpoint, "failed to read attachment content")
	}

	meta, err := json.Marshal(&model.AttachmentMeta{
		Filename:       upload.Filename,
		AttachmentType: attachmentType,
		CreatedComment: upload.Comment,
	})
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to marshal attachment metadata")
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="attachment"`)
	header.Set("Content-Type", "application/json")
	metaPart, err := mw.CreatePart(header)
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to create metadata part")
	}
	if _, err := metaPart.Write(meta); err != nil {
		return nil, wrapError(err, endpoint, "failed to write metadata part")
	}
	if err := mw.Close(); err != nil {
		return nil, wrapError(err, endpoint, "failed to close multipart body")
	}

	data, status, err := c.send(ctx, http.MethodPost, endpoint, &buf, mw.FormDataContentType(), "application/hal+json")
	if err != nil {
		return nil, err
	}
	if status == http.StatusAccepted {
		logging.From(ctx).Warn("Attachment upload accepted but might not be visible yet",
			"release_id", releaseID,
			"filename", upload.Filename,
		)
	}

	return decodeOptionalObject(data, endpoint)
}

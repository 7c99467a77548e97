package model

import (
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// AttachmentType classifies a file attached to a release
type AttachmentType string

const (
	AttachmentTypeDocument                AttachmentType = "DOCUMENT"
	AttachmentTypeSource                  AttachmentType = "SOURCE"
	AttachmentTypeClearingReport          AttachmentType = "CLEARING_REPORT"
	AttachmentTypeComponentLicenseInfoXML AttachmentType = "COMPONENT_LICENSE_INFO_XML"
	AttachmentTypeSourceSelf              AttachmentType = "SOURCE_SELF"
	AttachmentTypeBinary                  AttachmentType = "BINARY"
	AttachmentTypeBinarySelf              AttachmentType = "BINARY_SELF"
	AttachmentTypeLicenseAgreement        AttachmentType = "LICENSE_AGREEMENT"
	AttachmentTypeReadmeOSS               AttachmentType = "README_OSS"
)

var attachmentTypes = []AttachmentType{
	AttachmentTypeDocument,
	AttachmentTypeSource,
	AttachmentTypeClearingReport,
	AttachmentTypeComponentLicenseInfoXML,
	AttachmentTypeSourceSelf,
	AttachmentTypeBinary,
	AttachmentTypeBinarySelf,
	AttachmentTypeLicenseAgreement,
	AttachmentTypeReadmeOSS,
}

// ErrInvalidAttachmentType is returned for an attachment type SW360 does not know
var ErrInvalidAttachmentType = errors.New("invalid attachment type")

// ParseAttachmentType parses s case-insensitively. An empty string is SOURCE.
func ParseAttachmentType(s string) (AttachmentType, error) {
	if s == "" {
		return AttachmentTypeSource, nil
	}
	t := AttachmentType(strings.ToUpper(s))
	if !slices.Contains(attachmentTypes, t) {
		return "", goerr.Wrap(ErrInvalidAttachmentType, "unknown attachment type", goerr.V("type", s))
	}
	return t, nil
}

// AttachmentUpload describes a file to attach to a release
type AttachmentUpload struct {
	Filename string
	Content  io.Reader
	Type     AttachmentType
	Comment  string
}

// AttachmentMeta is the JSON part sent along with an uploaded file
type AttachmentMeta struct {
	Filename       string         `json:"filename"`
	AttachmentType AttachmentType `json:"attachmentType"`
	CreatedComment string         `json:"createdComment"`
}

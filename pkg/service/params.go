package service

import (
	"encoding/json"
	"time"

	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// createInput is one entry of create's objects array, wire shape
// [path, type, user_metadata?, data?, creation_time?].
type createInput struct {
	Path         string
	Type         string
	UserMeta     map[string]string
	Data         []byte
	CreationTime time.Time
	HasData      bool
}

func (c *createInput) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return wsdomain.InvalidArgument("create: object entry needs at least [path, type]")
	}
	if err := json.Unmarshal(raw[0], &c.Path); err != nil {
		return wsdomain.InvalidArgument("create: bad path entry")
	}
	if err := json.Unmarshal(raw[1], &c.Type); err != nil {
		return wsdomain.InvalidArgument("create: bad type entry")
	}
	if len(raw) > 2 && string(raw[2]) != "null" {
		if err := json.Unmarshal(raw[2], &c.UserMeta); err != nil {
			return wsdomain.InvalidArgument("create: bad metadata entry")
		}
	}
	if len(raw) > 3 && string(raw[3]) != "null" {
		var s string
		if err := json.Unmarshal(raw[3], &s); err != nil {
			return wsdomain.InvalidArgument("create: bad data entry")
		}
		c.Data = []byte(s)
		c.HasData = true
	}
	if len(raw) > 4 && string(raw[4]) != "null" {
		var s string
		if err := json.Unmarshal(raw[4], &s); err != nil {
			return wsdomain.InvalidArgument("create: bad creation_time entry")
		}
		t, err := time.Parse(timeLayout, s)
		if err != nil {
			return wsdomain.InvalidArgument("create: unparseable creation_time")
		}
		c.CreationTime = t
	}
	return nil
}

// CreateParams is create's params[0].
type CreateParams struct {
	Objects           []createInput `json:"objects"`
	CreateUploadNodes bool          `json:"createUploadNodes"`
	DownloadFromLinks bool          `json:"downloadFromLinks"` // reserved, accepted and ignored
	Overwrite         bool          `json:"overwrite"`
	Permission        string        `json:"permission"`
	SetOwner          string        `json:"setowner"`
	AdminMode         bool          `json:"adminmode"`
}

// DeleteParams is delete's params[0].
type DeleteParams struct {
	Objects           []string `json:"objects"`
	DeleteDirectories bool     `json:"deleteDirectories"`
	Force             bool     `json:"force"`
	AdminMode         bool     `json:"adminmode"`
}

// copyInput is one entry of copy's objects array, wire shape [from, to].
type copyInput struct {
	From string
	To   string
}

func (c *copyInput) UnmarshalJSON(b []byte) error {
	var raw [2]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return wsdomain.InvalidArgument("copy: object entry must be [from, to]")
	}
	c.From, c.To = raw[0], raw[1]
	return nil
}

// CopyParams is copy's (and move's) params[0].
type CopyParams struct {
	Objects   []copyInput `json:"objects"`
	Overwrite bool        `json:"overwrite"`
	Recursive bool        `json:"recursive"`
	Move      bool        `json:"move"`
	AdminMode bool        `json:"adminmode"`
}

// LsParams is ls's params[0].
type LsParams struct {
	Paths                  []string `json:"paths"`
	ExcludeDirectories     bool     `json:"excludeDirectories"`
	ExcludeObjects         bool     `json:"excludeObjects"`
	Recursive              bool     `json:"recursive"`
	FullHierarchicalOutput bool     `json:"fullHierachicalOutput"`
	AdminMode              bool     `json:"adminmode"`
}

// GetParams is get's params[0].
type GetParams struct {
	Objects      []string `json:"objects"`
	MetadataOnly bool     `json:"metadata_only"`
	AdminMode    bool     `json:"adminmode"`
}

// ListPermissionsParams is list_permissions's params[0].
type ListPermissionsParams struct {
	Objects   []string `json:"objects"`
	AdminMode bool     `json:"adminmode"`
}

// SetPermissionsParams is set_permissions's params[0].
type SetPermissionsParams struct {
	Path               string     `json:"path"`
	Permissions        [][]string `json:"permissions"`
	NewGlobalPermission string    `json:"new_global_permission"`
	AdminMode          bool       `json:"adminmode"`
}

// GetDownloadURLParams is get_download_url's params[0].
type GetDownloadURLParams struct {
	Objects   []string `json:"objects"`
	AdminMode bool     `json:"adminmode"`
}

// updateMetadataInput is one entry of update_metadata's objects array,
// wire shape [path, user_metadata?, type?, creation_time?].
type updateMetadataInput struct {
	Path         string
	UserMeta     map[string]string
	Type         string
	CreationTime time.Time
}

func (u *updateMetadataInput) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) < 1 {
		return wsdomain.InvalidArgument("update_metadata: object entry needs a path")
	}
	if err := json.Unmarshal(raw[0], &u.Path); err != nil {
		return wsdomain.InvalidArgument("update_metadata: bad path entry")
	}
	if len(raw) > 1 && string(raw[1]) != "null" {
		if err := json.Unmarshal(raw[1], &u.UserMeta); err != nil {
			return wsdomain.InvalidArgument("update_metadata: bad metadata entry")
		}
	}
	if len(raw) > 2 && string(raw[2]) != "null" {
		if err := json.Unmarshal(raw[2], &u.Type); err != nil {
			return wsdomain.InvalidArgument("update_metadata: bad type entry")
		}
	}
	return nil
}

// UpdateMetadataParams is update_metadata's params[0].
type UpdateMetadataParams struct {
	Objects   []updateMetadataInput `json:"objects"`
	Append    bool                  `json:"append"`
	AdminMode bool                  `json:"adminmode"`
}

// UpdateAutoMetaParams is update_auto_meta's params[0].
type UpdateAutoMetaParams struct {
	Objects   []string `json:"objects"`
	AdminMode bool     `json:"adminmode"`
}

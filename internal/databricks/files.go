package databricks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
)

// UploadFile writes data to an absolute volume path, e.g.
// /Volumes/main/default/csv_uploads/data.csv, overwriting any existing file.
func (c *Client) UploadFile(ctx context.Context, path string, data []byte) error {
	if !strings.HasPrefix(path, "/") {
		return &core.AdapterError{Kind: core.AdapterRemote, Op: "upload", Detail: fmt.Sprintf("volume path %q must be absolute", path)}
	}

	// Each path segment is escaped individually so slashes survive.
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	endpoint := c.host + "/api/2.0/fs/files/" + strings.Join(segments, "/") + "?overwrite=true"

	_, err := c.do(ctx, "upload", "PUT", endpoint, "application/octet-stream", data)
	return err
}

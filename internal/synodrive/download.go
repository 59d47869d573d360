package synodrive

import (
	"context"
	"fmt"
	"strings"
)

// DownloadOfficeFile exports the Synology Office document identified by
// fileID in its Microsoft Office representation and returns the raw bytes.
// DSM performs the conversion server side based on the document type.
func (c *Client) DownloadOfficeFile(ctx context.Context, fileID string) ([]byte, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	op := fmt.Sprintf("download %s", fileID)
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api":     filesAPI,
			"version": "2",
			"method":  "download",
			"path":    fileID,
		}).
		Get(entryPath)

	if err != nil {
		return nil, fmt.Errorf("synodrive: %s: http request error: %w", op, err)
	}
	if res.IsErrorState() {
		return nil, fmt.Errorf("synodrive: %s: http status %d", op, res.GetStatusCode())
	}

	// A failed export comes back as a json envelope instead of file bytes,
	// still with http 200.
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		var env apiEnvelope
		if err := jsonUnmarshal(res.Bytes(), &env); err == nil && !env.Success {
			code := CodeUnknownError
			if env.Error != nil {
				code = env.Error.Code
			}
			return nil, &APIError{Op: op, Code: code}
		}
	}

	return res.Bytes(), nil
}

package synodrive

import (
	"context"
	"fmt"
	"strconv"
)

// listPageSize is the number of items fetched per webapi page.
const listPageSize = 1000

// ListFolder returns every item directly inside the folder identified by
// folderID (a file id or a display path such as "/mydrive"). Pagination is
// handled internally.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]*Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	op := fmt.Sprintf("list folder %s", folderID)
	var all []*Item
	for offset := 0; ; offset += listPageSize {
		params := map[string]string{
			"api":     filesAPI,
			"version": "2",
			"method":  "list",
			"path":    folderID,
			"offset":  strconv.Itoa(offset),
			"limit":   strconv.Itoa(listPageSize),
			"sort_by": "name",
		}

		var data listData
		if err := c.call(ctx, op, entryPath, params, &data); err != nil {
			return nil, err
		}

		all = append(all, data.Items...)
		if len(data.Items) < listPageSize {
			break
		}
		if data.Total > 0 && len(all) >= data.Total {
			break
		}
	}
	return all, nil
}

// SharedWithMe returns the top-level items other users shared with the
// logged-in account.
func (c *Client) SharedWithMe(ctx context.Context) ([]*Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var all []*Item
	for offset := 0; ; offset += listPageSize {
		params := map[string]string{
			"api":     filesAPI,
			"version": "2",
			"method":  "shared_with_me",
			"offset":  strconv.Itoa(offset),
			"limit":   strconv.Itoa(listPageSize),
			"sort_by": "name",
		}

		var data listData
		if err := c.call(ctx, "list shared with me", entryPath, params, &data); err != nil {
			return nil, err
		}

		all = append(all, data.Items...)
		if len(data.Items) < listPageSize {
			break
		}
		if data.Total > 0 && len(all) >= data.Total {
			break
		}
	}
	return all, nil
}

// TeamFolders returns the team folders visible to the logged-in account,
// keyed by display name with the folder file id as value.
func (c *Client) TeamFolders(ctx context.Context) (map[string]string, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	folders := make(map[string]string)
	for offset := 0; ; offset += listPageSize {
		params := map[string]string{
			"api":     teamAPI,
			"version": "1",
			"method":  "list",
			"offset":  strconv.Itoa(offset),
			"limit":   strconv.Itoa(listPageSize),
		}

		var data teamFolderData
		if err := c.call(ctx, "list team folders", entryPath, params, &data); err != nil {
			return nil, err
		}

		for _, item := range data.Items {
			folders[item.Name] = item.FileID
		}
		if len(data.Items) < listPageSize {
			break
		}
	}
	return folders, nil
}

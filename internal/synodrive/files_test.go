package synodrive

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFolderPaginates(t *testing.T) {
	total := listPageSize + 3
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, filesAPI, q.Get("api"))
		require.Equal(t, "list", q.Get("method"))
		require.Equal(t, MyDriveID, q.Get("path"))

		offset, err := strconv.Atoi(q.Get("offset"))
		require.NoError(t, err)
		limit, err := strconv.Atoi(q.Get("limit"))
		require.NoError(t, err)

		var items []*Item
		for i := offset; i < total && i < offset+limit; i++ {
			items = append(items, &Item{
				FileID:      fmt.Sprintf("id-%04d", i),
				Name:        fmt.Sprintf("doc-%04d.osheet", i),
				ContentType: ContentTypeDocument,
			})
		}
		writeSuccess(t, w, listData{Items: items, Total: total})
	})

	items, err := client.ListFolder(t.Context(), MyDriveID)
	require.NoError(t, err)
	require.Len(t, items, total)
	assert.Equal(t, "doc-0000.osheet", items[0].Name)
	assert.Equal(t, fmt.Sprintf("doc-%04d.osheet", total-1), items[total-1].Name)
}

func TestListFolderPropagatesAPIError(t *testing.T) {
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, CodeNoPermission)
	})

	_, err := client.ListFolder(t.Context(), "/team-folders/secret")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNoPermission, apiErr.Code)
}

func TestSharedWithMe(t *testing.T) {
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, filesAPI, q.Get("api"))
		require.Equal(t, "shared_with_me", q.Get("method"))

		writeSuccess(t, w, listData{
			Items: []*Item{{
				FileID:      "871239",
				Name:        "handover.odoc",
				DisplayPath: "/shared/handover.odoc",
				ContentType: ContentTypeDocument,
			}},
			Total: 1,
		})
	})

	items, err := client.SharedWithMe(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/shared/handover.odoc", items[0].Path())
}

func TestTeamFolders(t *testing.T) {
	client := newLoggedInClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, teamAPI, q.Get("api"))
		require.Equal(t, "list", q.Get("method"))

		writeSuccess(t, w, teamFolderData{
			Items: []*teamFolderItem{
				{FileID: "tf-100", Name: "Accounting"},
				{FileID: "tf-200", Name: "Engineering"},
			},
			Total: 2,
		})
	})

	folders, err := client.TeamFolders(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Accounting":  "tf-100",
		"Engineering": "tf-200",
	}, folders)
}

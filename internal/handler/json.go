package handler

import (
	"fmt"
	"time"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

func userURL(id uint64) string {
	return fmt.Sprintf("%s/users/%d", apiPrefix, id)
}

func compositionURL(id uint64) string {
	return fmt.Sprintf("%s/compositions/%d", apiPrefix, id)
}

// userJSON API 中的用户表示
func userJSON(u *model.User, compositionCount int64) gin.H {
	return gin.H{
		"url":                       userURL(u.ID),
		"username":                  u.Username,
		"last_seen":                 u.LastSeen,
		"compositions_url":          userURL(u.ID) + "/compositions/",
		"followed_compositions_url": userURL(u.ID) + "/followed/",
		"composition_count":         compositionCount,
	}
}

func compositionJSON(c *model.Composition) gin.H {
	return gin.H{
		"url":              compositionURL(c.ID),
		"release_type":     int(c.ReleaseType),
		"title":            c.Title,
		"description":      c.Description,
		"description_html": c.DescriptionHTML,
		"timestamp":        c.Timestamp,
		"slug":             c.SlugString(),
		"artist_url":       userURL(c.ArtistID),
	}
}

// pageJSON prev/next 为空时输出 null
func pageJSON(p *rdb.CompositionPage, base string) gin.H {
	items := make([]gin.H, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, compositionJSON(&p.Items[i]))
	}
	var prev, next *string
	if p.HasPrev() {
		s := fmt.Sprintf("%s?page=%d", base, p.Page-1)
		prev = &s
	}
	if p.HasNext() {
		s := fmt.Sprintf("%s?page=%d", base, p.Page+1)
		next = &s
	}
	return gin.H{
		"compositions": items,
		"prev":         prev,
		"next":         next,
		"count":        p.Total,
		"page":         p.Page,
	}
}

type followItem struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// followListJSON followers=true 时取边的 Follower，否则取 Following
func followListJSON(rows []model.Follow, followers bool, next uint64) gin.H {
	list := make([]followItem, 0, len(rows))
	for _, row := range rows {
		u := row.Following
		if followers {
			u = row.Follower
		}
		if u == nil {
			continue
		}
		list = append(list, followItem{
			ID:        u.ID,
			Username:  u.Username,
			URL:       userURL(u.ID),
			Timestamp: row.Timestamp,
		})
	}
	return gin.H{"list": list, "next_cursor": next}
}

package models

import "time"

type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id,omitempty"`
	Author    string    `json:"name"`
	Avatar    string    `json:"profile_pic,omitempty"`
	Text      string    `json:"comment_text"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) UnmarshalJSON(b []byte) error {
	f, err := decodeFields(b)
	if err != nil {
		return err
	}
	*c = Comment{
		Author:    f.str("name", "author", "username"),
		Avatar:    f.str("profile_pic", "avatar"),
		Text:      f.str("comment_text", "text", "content"),
		CreatedAt: f.when("created_at", "createdAt"),
	}
	if u := f.obj("user"); u != nil {
		if c.Author == "" {
			c.Author = u.str("name", "username")
		}
		if c.Avatar == "" {
			c.Avatar = u.str("profile_pic", "avatar")
		}
	}
	c.ID, _ = f.num("id")
	c.PostID, _ = f.num("post_id", "postId")
	return nil
}

// LikeState is the like counter of a post together with whether the
// current user likes it.
type LikeState struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

func (l *LikeState) UnmarshalJSON(b []byte) error {
	f, err := decodeFields(b)
	if err != nil {
		return err
	}
	*l = LikeState{Liked: f.boolean("liked")}
	l.Count, _ = f.num("count", "likes_count", "likes")
	return nil
}

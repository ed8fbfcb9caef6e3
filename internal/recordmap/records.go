package recordmap

import (
	"strings"

	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/schema"
)

// Block types the client treats specially.
const (
	BlockPage               = "page"
	BlockText               = "text"
	BlockToDo               = "to_do"
	BlockHeader             = "header"
	BlockSubHeader          = "sub_header"
	BlockSubSubHeader       = "sub_sub_header"
	BlockBulletedList       = "bulleted_list"
	BlockNumberedList       = "numbered_list"
	BlockQuote              = "quote"
	BlockCode               = "code"
	BlockDivider            = "divider"
	BlockCollectionView     = "collection_view"
	BlockCollectionViewPage = "collection_view_page"
)

// Block is a decoded block record.
type Block struct {
	ID             string                   `json:"id"`
	Type           string                   `json:"type"`
	Properties     map[string]richtext.Text `json:"properties,omitempty"`
	Content        []string                 `json:"content,omitempty"`
	ParentID       string                   `json:"parent_id"`
	ParentTable    string                   `json:"parent_table"`
	SpaceID        string                   `json:"space_id"`
	Alive          *bool                    `json:"alive,omitempty"`
	CollectionID   string                   `json:"collection_id,omitempty"`
	ViewIDs        []string                 `json:"view_ids,omitempty"`
	Discussions    []string                 `json:"discussions,omitempty"`
	CreatedTime    int64                    `json:"created_time,omitempty"`
	LastEditedTime int64                    `json:"last_edited_time,omitempty"`
}

// IsAlive reports whether the block has not been soft-deleted.
func (b *Block) IsAlive() bool {
	return b.Alive == nil || *b.Alive
}

// Title returns the block's title property.
func (b *Block) Title() richtext.Text {
	return b.Properties[schema.TitleID]
}

// Checked reports the to_do checked state ("Yes" convention).
func (b *Block) Checked() bool {
	return b.Properties["checked"].Plain() == "Yes"
}

// IsCollectionView reports whether the block embeds or is a database.
func (b *Block) IsCollectionView() bool {
	return b.Type == BlockCollectionView || b.Type == BlockCollectionViewPage
}

// Block returns a live block. Dead, undecodable and type-less records are
// reported as absent.
func (m RecordMap) Block(id string) (*Block, bool) {
	var b Block
	if !m.decode(TableBlock, id, &b) || b.Type == "" || !b.IsAlive() {
		return nil, false
	}
	if b.ID == "" {
		b.ID = id
	}
	return &b, true
}

// Collection is a decoded collection (database) record.
type Collection struct {
	ID       string        `json:"id"`
	Name     richtext.Text `json:"name,omitempty"`
	Schema   schema.Raw    `json:"schema"`
	ParentID string        `json:"parent_id"`
	SpaceID  string        `json:"space_id"`
	Alive    *bool         `json:"alive,omitempty"`
}

// Collection returns a collection record.
func (m RecordMap) Collection(id string) (*Collection, bool) {
	var c Collection
	if !m.decode(TableCollection, id, &c) {
		return nil, false
	}
	if c.Alive != nil && !*c.Alive {
		return nil, false
	}
	if c.ID == "" {
		c.ID = id
	}
	return &c, true
}

// User is a decoded notion_user record.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
}

// DisplayName prefers given + family name, then name, then email.
func (u *User) DisplayName() string {
	if full := strings.TrimSpace(u.GivenName + " " + u.FamilyName); full != "" {
		return full
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// User returns a user record.
func (m RecordMap) User(id string) (*User, bool) {
	var u User
	if !m.decode(TableUser, id, &u) {
		return nil, false
	}
	if u.ID == "" {
		u.ID = id
	}
	return &u, true
}

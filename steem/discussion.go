// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package steem

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

// curationWindow is the age at which a vote earns the full curation reward.
const curationWindow = 30 * time.Minute

// CommentSorts are the valid sorts of Post.Comments. The payout sorts are
// descending, the others ascending.
var CommentSorts = []string{"total_payout_reward", "total_payout_value",
	"created", "net_votes", "children", "author"}

var openingPostRegexp = regexp.MustCompile(`/([^/]*)/@([^/]*)/([^#]*)`)

// Post is a post or comment with its decoded json_metadata.
type Post struct {
	*api.Content
	Meta map[string]interface{}
	// Tags are the category of a root post followed by the tags of its
	// json_metadata.
	Tags []string

	s *Steem
}

// LoadPost returns the post identified by identifier.
func (s *Steem) LoadPost(ctx context.Context, identifier string) (*Post, error) {
	c, err := s.GetContent(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.newPost(c), nil
}

func (s *Steem) newPost(c *api.Content) *Post {
	p := Post{Content: c, Meta: make(map[string]interface{}), s: s}
	if c.JSONMetadata != "" {
		if err := json.Unmarshal([]byte(c.JSONMetadata), &p.Meta); err != nil {
			p.Meta = make(map[string]interface{})
		}
	}
	if c.Depth == 0 && c.ParentPermlink != "" {
		p.Tags = append(p.Tags, c.ParentPermlink)
	}
	if tags, ok := p.Meta["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if tag, ok := tag.(string); ok {
				p.Tags = append(p.Tags, tag)
			}
		}
	}
	return &p
}

// Reward is the total payout of p, paid or pending.
func (p *Post) Reward() protocol.Amount {
	paid, pending := p.TotalPayoutValue, p.TotalPendingPayoutValue
	switch {
	case paid.Symbol == "":
		return pending
	case pending.Symbol == "":
		return paid
	}
	total, err := paid.Add(pending)
	if err != nil {
		return paid
	}
	return total
}

// IsMainPost reports whether p is a root post.
func (p *Post) IsMainPost() bool {
	return p.Depth == 0
}

// IsComment reports whether p replies to another post.
func (p *Post) IsComment() bool {
	return p.Depth > 0
}

// OpeningPost returns the identifier and category of the root post of the
// discussion of p.
func (p *Post) OpeningPost() (identifier, category string) {
	m := openingPostRegexp.FindStringSubmatch(p.URL)
	if m == nil {
		return p.Identifier(), p.Category
	}
	return ConstructIdentifier(m[2], m[3]), m[1]
}

// TimeElapsed is the age of p.
func (p *Post) TimeElapsed() time.Duration {
	return p.s.now().Sub(p.Created.Time)
}

// CurationRewardPct is the share of the curation reward, in percent, that a
// vote cast now earns.
func (p *Post) CurationRewardPct() float64 {
	pct := float64(p.TimeElapsed()) / float64(curationWindow) * 100
	return math.Max(0, math.Min(pct, 100))
}

// Vote on p. ErrArchivedPost is returned for posts past their payout.
func (p *Post) Vote(ctx context.Context, weight float64,
	voter string) (*txbuilder.Builder, error) {
	if p.Mode == "archived" {
		return nil, fmt.Errorf("%w: %v", ErrArchivedPost, p.Identifier())
	}
	return p.s.Vote(ctx, p.Identifier(), weight, voter)
}

func (p *Post) Upvote(ctx context.Context, voter string) (*txbuilder.Builder, error) {
	return p.Vote(ctx, 100, voter)
}

func (p *Post) Downvote(ctx context.Context, voter string) (*txbuilder.Builder, error) {
	return p.Vote(ctx, -100, voter)
}

// Reply to p.
func (p *Post) Reply(ctx context.Context, body, title, author string,
	meta map[string]interface{}) (*txbuilder.Builder, error) {
	return p.s.Reply(ctx, p.Identifier(), body, title, author, meta)
}

// Comments returns the direct replies to p ordered by sortBy, which
// defaults to "total_payout_reward".
func (p *Post) Comments(ctx context.Context, sortBy string) ([]*Post, error) {
	if sortBy == "" {
		sortBy = CommentSorts[0]
	}
	less, err := commentLess(sortBy)
	if err != nil {
		return nil, err
	}
	replies, err := p.s.API.GetContentReplies(ctx, p.Author, p.Permlink)
	if err != nil {
		return nil, err
	}
	comments := make([]*Post, len(replies))
	for i, c := range replies {
		comments[i] = p.s.newPost(c)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return less(comments[i], comments[j])
	})
	return comments, nil
}

func commentLess(sortBy string) (func(a, b *Post) bool, error) {
	switch sortBy {
	case "total_payout_reward":
		return func(a, b *Post) bool {
			return a.Reward().Float64() > b.Reward().Float64()
		}, nil
	case "total_payout_value":
		return func(a, b *Post) bool {
			return a.TotalPayoutValue.Float64() > b.TotalPayoutValue.Float64()
		}, nil
	case "created":
		return func(a, b *Post) bool {
			return a.Created.Before(b.Created.Time)
		}, nil
	case "net_votes":
		return func(a, b *Post) bool { return a.NetVotes < b.NetVotes }, nil
	case "children":
		return func(a, b *Post) bool { return a.Children < b.Children }, nil
	case "author":
		return func(a, b *Post) bool { return a.Author < b.Author }, nil
	}
	return nil, fmt.Errorf("%w: %q, must be one of %v", ErrInvalidSort,
		sortBy, CommentSorts)
}

// Export returns p as stored by archivers: the content with its decoded
// json_metadata, tags and derived values.
func (p *Post) Export() (map[string]interface{}, error) {
	data, err := json.Marshal(p.Content)
	if err != nil {
		return nil, err
	}
	exp := make(map[string]interface{})
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, err
	}
	identifier, category := p.OpeningPost()
	exp["json_metadata"] = p.Meta
	exp["tags"] = p.Tags
	exp["identifier"] = p.Identifier()
	exp["opening_post"] = identifier
	exp["opening_post_category"] = category
	exp["reward"] = p.Reward().String()
	exp["is_main_post"] = p.IsMainPost()
	exp["is_comment"] = p.IsComment()
	return exp, nil
}

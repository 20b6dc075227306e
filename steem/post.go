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

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// PostOptions describe a new post or reply.
type PostOptions struct {
	Title string
	Body  string
	// Author defaults to the default author.
	Author string
	// Permlink is derived from Title, or from the parent for replies,
	// when empty.
	Permlink string
	Meta     map[string]interface{}
	// ReplyIdentifier is the "@author/permlink" of the parent post.
	ReplyIdentifier string
	// Category is the parent permlink of a new post. If it is empty, the
	// first of Tags is used.
	Category string
	Tags     []string
}

// Post publishes a new post, or a reply if opts.ReplyIdentifier is set.
func (s *Steem) Post(ctx context.Context, opts PostOptions) (*txbuilder.Builder, error) {
	op, err := s.comment(opts)
	if err != nil {
		return nil, err
	}
	return s.FinalizeOp(ctx, op.Author, keys.RolePosting, op)
}

func (s *Steem) comment(opts PostOptions) (*protocol.Comment, error) {
	author, err := orDefault(opts.Author, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]interface{}, len(opts.Meta)+1)
	for k, v := range opts.Meta {
		meta[k] = v
	}

	category := opts.Category
	tags := uniqueTags(opts.Tags)
	switch {
	case category == "" && len(tags) > 0:
		category = tags[0]
		meta["tags"] = tags[1:]
	case len(tags) > 0:
		meta["tags"] = tags
	}

	op := protocol.Comment{
		Author:   author,
		Permlink: opts.Permlink,
		Title:    opts.Title,
		Body:     opts.Body,
	}
	switch {
	case opts.ReplyIdentifier != "" && category != "":
		return nil, ErrCategoryWithReply
	case opts.ReplyIdentifier != "":
		op.ParentAuthor, op.ParentPermlink, err = ResolveIdentifier(opts.ReplyIdentifier)
		if err != nil {
			return nil, err
		}
		if op.Permlink == "" {
			op.Permlink = derivePermlink(opts.Title, op.ParentPermlink, s.now())
		}
	case category != "":
		op.ParentPermlink = SanitizePermlink(category)
		if op.Permlink == "" {
			op.Permlink = SanitizePermlink(opts.Title)
		}
	default:
		if op.Permlink == "" {
			op.Permlink = SanitizePermlink(opts.Title)
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("json_metadata: %w", err)
	}
	op.JSONMetadata = string(data)
	return &op, nil
}

// Reply posts body as a reply to the post identified by identifier.
func (s *Steem) Reply(ctx context.Context, identifier, body, title, author string,
	meta map[string]interface{}) (*txbuilder.Builder, error) {
	return s.Post(ctx, PostOptions{
		Title:           title,
		Body:            body,
		Author:          author,
		Meta:            meta,
		ReplyIdentifier: identifier,
	})
}

// EditOptions control Edit.
type EditOptions struct {
	// Meta is merged into the existing json_metadata. A nil Meta keeps it
	// unchanged.
	Meta map[string]interface{}
	// Replace sends the new body instead of a patch of the old one.
	Replace bool
}

// Edit changes the body of an existing post. Unless opts.Replace is set, a
// diff-match-patch patch from the current body is sent. ErrNoChange is
// returned if the body is unchanged.
func (s *Steem) Edit(ctx context.Context, identifier, body string,
	opts EditOptions) (*txbuilder.Builder, error) {
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	original, err := s.API.GetContent(ctx, author, permlink)
	if err != nil {
		return nil, err
	}

	newBody := body
	if !opts.Replace {
		dmp := diffmatchpatch.New()
		newBody = dmp.PatchToText(dmp.PatchMake(original.Body, body))
		if newBody == "" {
			s.log.Info("No changes made! Skipping ...")
			return nil, ErrNoChange
		}
	}

	op := &protocol.Comment{
		ParentAuthor:   original.ParentAuthor,
		ParentPermlink: original.ParentPermlink,
		Author:         original.Author,
		Permlink:       original.Permlink,
		Title:          original.Title,
		Body:           newBody,
		JSONMetadata:   original.JSONMetadata,
	}
	if opts.Meta != nil {
		meta := make(map[string]interface{})
		if original.JSONMetadata != "" {
			if err := json.Unmarshal([]byte(original.JSONMetadata), &meta); err != nil {
				s.log.Warnf("Discarding invalid json_metadata of %v: %v",
					identifier, err)
				meta = make(map[string]interface{})
			}
		}
		for k, v := range opts.Meta {
			meta[k] = v
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("json_metadata: %w", err)
		}
		op.JSONMetadata = string(data)
	}
	return s.FinalizeOp(ctx, op.Author, keys.RolePosting, op)
}

// Vote on the post identified by identifier with weight in percent, from
// -100 to 100.
func (s *Steem) Vote(ctx context.Context, identifier string, weight float64,
	voter string) (*txbuilder.Builder, error) {
	voter, err := orDefault(voter, s.DefaultVoter)
	if err != nil {
		return nil, err
	}
	if weight < -100 || weight > 100 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	op := &protocol.Vote{
		Voter:    voter,
		Author:   author,
		Permlink: permlink,
		Weight:   int16(weight * protocol.Percent1),
	}
	return s.FinalizeOp(ctx, voter, keys.RolePosting, op)
}

// GetContent returns the post identified by identifier.
func (s *Steem) GetContent(ctx context.Context, identifier string) (*api.Content, error) {
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return s.API.GetContent(ctx, author, permlink)
}

// PostsQuery selects the posts returned by GetPosts.
type PostsQuery struct {
	// Limit defaults to 10.
	Limit uint32
	// Sort defaults to "hot". See api.DiscussionSorts.
	Sort     string
	Category string
	// Start is the identifier of the post to start after.
	Start string
}

func (s *Steem) GetPosts(ctx context.Context, q PostsQuery) ([]*api.Content, error) {
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Sort == "" {
		q.Sort = "hot"
	}
	dq := api.DiscussionQuery{Tag: q.Category, Limit: q.Limit}
	if q.Start != "" {
		var err error
		dq.StartAuthor, dq.StartPermlink, err = ResolveIdentifier(q.Start)
		if err != nil {
			return nil, err
		}
	}
	return s.API.GetDiscussionsBy(ctx, q.Sort, dq)
}

// GetComments returns the first level replies to a post.
func (s *Steem) GetComments(ctx context.Context, identifier string) ([]*api.Content, error) {
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return s.API.GetContentReplies(ctx, author, permlink)
}

// StreamComments calls fn for every new comment and post.
func (s *Steem) StreamComments(ctx context.Context, opts api.StreamOptions,
	fn func(*protocol.Comment, api.OperationContext) error) error {
	name := protocol.OpComment.String()
	return s.API.Stream(ctx, []string{name}, opts,
		func(oc api.OperationContext) error {
			c, ok := oc.Op.Operation.(*protocol.Comment)
			if !ok {
				return nil
			}
			return fn(c, oc)
		})
}

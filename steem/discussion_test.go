package steem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replyJSON was created 15 minutes before the test clock.
const replyJSON = `{"author": "bob", "permlink": "hello", "category": "steem",
	"parent_author": "alice", "parent_permlink": "root", "depth": 1,
	"json_metadata": "{\"tags\": [\"go\", 7]}",
	"created": "2016-05-17T10:10:46", "mode": "first_payout",
	"url": "/steem/@alice/root#@bob/hello",
	"total_payout_value": "1.000 SBD",
	"total_pending_payout_value": "2.500 SBD"}`

func (n *testNode) expectContent(author, permlink, data string) {
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_content",
			[]interface{}{author, permlink}, gomock.Any()).
		DoAndReturn(mocks.Respond(data)).AnyTimes()
}

func TestLoadPost(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectContent("bob", "hello", replyJSON)
	n.expectContent("alice", "root", `{"author": "alice",
		"permlink": "root", "category": "steem",
		"parent_permlink": "steem", "json_metadata": "not json",
		"created": "2016-05-16T10:25:46", "mode": "archived",
		"url": "/steem/@alice/root", "total_payout_value": "4.000 SBD"}`)

	p, err := s.LoadPost(ctx, "@bob/hello")
	require.NoError(t, err)
	assert.True(p.IsComment())
	assert.False(p.IsMainPost())
	assert.Equal([]string{"go"}, p.Tags)
	assert.Equal("3.500 SBD", p.Reward().String())
	identifier, category := p.OpeningPost()
	assert.Equal("@alice/root", identifier)
	assert.Equal("steem", category)
	assert.Equal(15*time.Minute, p.TimeElapsed())
	assert.Equal(50.0, p.CurationRewardPct())

	root, err := s.LoadPost(ctx, "alice/root")
	require.NoError(t, err)
	assert.True(root.IsMainPost())
	assert.Empty(root.Meta)
	assert.Equal([]string{"steem"}, root.Tags)
	assert.Equal("4.000 SBD", root.Reward().String())
	identifier, _ = root.OpeningPost()
	assert.Equal("@alice/root", identifier)
	assert.Equal(100.0, root.CurationRewardPct())

	_, err = root.Upvote(ctx, "alice")
	assert.True(errors.Is(err, ErrArchivedPost))
}

func TestPostVote(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey, WithDefaultVoter("alice"))
	n.expectContent("bob", "hello", replyJSON)
	p, err := s.LoadPost(ctx, "@bob/hello")
	require.NoError(t, err)

	b, err := p.Upvote(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, protocol.Vote{Voter: "alice", Author: "bob",
		Permlink: "hello", Weight: 10000},
		*b.Tx.Operations[0].Operation.(*protocol.Vote))

	b, err = p.Downvote(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int16(-10000),
		b.Tx.Operations[0].Operation.(*protocol.Vote).Weight)

	b, err = p.Reply(ctx, "reply body", "", "alice", nil)
	require.NoError(t, err)
	op := b.Tx.Operations[0].Operation.(*protocol.Comment)
	assert.Equal(t, "bob", op.ParentAuthor)
	assert.Equal(t, "hello", op.ParentPermlink)
	assert.Equal(t, "reply body", op.Body)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectContent("bob", "hello", replyJSON)
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_content_replies",
			[]interface{}{"bob", "hello"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[
			{"author": "carol", "permlink": "c", "depth": 2,
				"created": "2016-05-17T10:20:00", "net_votes": 1,
				"children": 3, "total_payout_value": "0.000 SBD",
				"total_pending_payout_value": "5.000 SBD"},
			{"author": "alice", "permlink": "a", "depth": 2,
				"created": "2016-05-17T10:15:00", "net_votes": 7,
				"children": 0, "total_payout_value": "2.000 SBD",
				"total_pending_payout_value": "0.000 SBD"},
			{"author": "bob", "permlink": "b", "depth": 2,
				"created": "2016-05-17T10:18:00", "net_votes": 4,
				"children": 1, "total_payout_value": "1.000 SBD",
				"total_pending_payout_value": "0.000 SBD"}
		]`)).AnyTimes()
	p, err := s.LoadPost(ctx, "@bob/hello")
	require.NoError(t, err)

	for _, test := range []struct {
		Sort string
		Exp  []string
	}{
		{Sort: "", Exp: []string{"carol", "alice", "bob"}},
		{Sort: "total_payout_value", Exp: []string{"alice", "bob", "carol"}},
		{Sort: "created", Exp: []string{"alice", "bob", "carol"}},
		{Sort: "net_votes", Exp: []string{"carol", "bob", "alice"}},
		{Sort: "children", Exp: []string{"alice", "bob", "carol"}},
		{Sort: "author", Exp: []string{"alice", "bob", "carol"}},
	} {
		t.Run(test.Sort, func(t *testing.T) {
			comments, err := p.Comments(ctx, test.Sort)
			require.NoError(t, err)
			authors := make([]string, len(comments))
			for i, c := range comments {
				authors[i] = c.Author
			}
			assert.Equal(t, test.Exp, authors)
		})
	}

	_, err = p.Comments(ctx, "votes")
	assert.True(t, errors.Is(err, ErrInvalidSort))
}

func TestPostExport(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectContent("bob", "hello", replyJSON)
	p, err := s.LoadPost(ctx, "@bob/hello")
	require.NoError(t, err)

	exp, err := p.Export()
	require.NoError(t, err)
	assert.Equal(t, "@bob/hello", exp["identifier"])
	assert.Equal(t, "@alice/root", exp["opening_post"])
	assert.Equal(t, "steem", exp["opening_post_category"])
	assert.Equal(t, "3.500 SBD", exp["reward"])
	assert.Equal(t, true, exp["is_comment"])
	assert.Equal(t, "first_payout", exp["mode"])
	assert.Equal(t, []string{"go"}, exp["tags"])
	assert.Equal(t, map[string]interface{}{"tags": []interface{}{"go", 7.0}},
		exp["json_metadata"])
}

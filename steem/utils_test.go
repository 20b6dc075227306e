package steem

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveIdentifier(t *testing.T) {
	for _, test := range []struct {
		ID       string
		Author   string
		Permlink string
		Err      bool
	}{
		{ID: "@alice/hello-world", Author: "alice", Permlink: "hello-world"},
		{ID: "alice/hello", Author: "alice", Permlink: "hello"},
		{ID: "@steem.dev/re-post_1", Author: "steem.dev", Permlink: "re-post_1"},
		{ID: "@/category", Author: "", Permlink: "category"},
		{ID: "@alice", Err: true},
		{ID: "", Err: true},
	} {
		author, permlink, err := ResolveIdentifier(test.ID)
		if test.Err {
			assert.True(t, errors.Is(err, ErrInvalidIdentifier), test.ID)
			continue
		}
		assert.NoError(t, err, test.ID)
		assert.Equal(t, test.Author, author, test.ID)
		assert.Equal(t, test.Permlink, permlink, test.ID)
		assert.Equal(t, "@"+author+"/"+permlink,
			ConstructIdentifier(author, permlink))
	}
}

func TestSanitizePermlink(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("aaf-0-12", SanitizePermlink("aAf_0.12"))
	assert.Equal("hello-world", SanitizePermlink("  Hello World! "))
	assert.Equal("caf", SanitizePermlink("café"))
}

func TestDerivePermlink(t *testing.T) {
	assert := assert.New(t)
	now := time.Unix(1463480746, 0)
	assert.Equal("20160517t102546", FormatTime(1463480746))
	assert.Equal("my-post", derivePermlink("My Post", "", now))
	assert.Equal("re-parent-20160517t102546", derivePermlink("", "parent", now))
	assert.Equal("re-some-post-20160517t102546",
		derivePermlink("ignored", "some.post", now))
}

func TestTags(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"steem", "go", "dev", "ops"},
		SplitTags("steem, go  dev_ops"))
	assert.Nil(SplitTags(" ,"))
	assert.Equal([]string{"a", "b"}, uniqueTags([]string{"a", "b", "a"}))
	assert.Equal([]string{}, uniqueTags(nil))
}

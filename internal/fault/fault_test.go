package fault

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPGMapsMissingSchema(t *testing.T) {
	err := FromPG("list conversations", &pq.Error{Code: "42P01"})
	require.Error(t, err)
	assert.True(t, IsNotAvailable(err))

	err = FromPG("call function", &pq.Error{Code: "42883"})
	assert.True(t, IsNotAvailable(err))
}

func TestFromPGMapsPolicyRejection(t *testing.T) {
	err := FromPG("insert message", &pq.Error{Code: "42501"})
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestFromPGLeavesNoRowsAlone(t *testing.T) {
	err := FromPG("get conversation", sql.ErrNoRows)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestFromPGWrapsUnknown(t *testing.T) {
	err := FromPG("query", errors.New("connection refused"))
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, IsNotAvailable(err))
}

func TestFromPGNil(t *testing.T) {
	assert.NoError(t, FromPG("noop", nil))
}

func TestKindOfDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindValidation, KindOf(Validation("bad id")))
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized("not yours")))
}

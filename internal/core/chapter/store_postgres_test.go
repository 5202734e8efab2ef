// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestOrdinalTakenQuery_NoExclusion verifies the create path, which has no
chapter to exclude, binds exactly two parameters and emits no exclusion
clause. The id column is a uuid; binding an empty string for it would
make Postgres reject every sibling check.
*/
func TestOrdinalTakenQuery_NoExclusion(t *testing.T) {
	query, args := ordinalTakenQuery("t1", 2.5, "")

	require.Len(t, args, 2)
	assert.Equal(t, "t1", args[0])
	assert.Equal(t, 2.5, args[1])
	assert.NotContains(t, query, "$3")
	assert.NotContains(t, query, "<>")
}

/*
TestOrdinalTakenQuery_WithExclusion verifies the update path excludes
the chapter itself from the sibling check.
*/
func TestOrdinalTakenQuery_WithExclusion(t *testing.T) {
	query, args := ordinalTakenQuery("t1", 2.5, "c1")

	require.Len(t, args, 3)
	assert.Equal(t, "c1", args[2])
	assert.True(t, strings.Contains(query, "<> $3"), "query should exclude the chapter by id: %s", query)
}

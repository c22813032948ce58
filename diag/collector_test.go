package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := New()
	c.Add("tables", "malformed grid")
	c.Addf("media", "relationship %q not found", "rId9")

	require.Equal(t, 2, c.Len())
	items := c.Items()
	assert.Equal(t, "tables: malformed grid", items[0].String())
	assert.Equal(t, `media: relationship "rId9" not found`, items[1].String())

	items[0].Message = "changed"
	assert.Equal(t, "malformed grid", c.Items()[0].Message, "Items must return a copy")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Add("x", "y")
	c.Addf("x", "%d", 1)

	assert.Equal(t, 0, c.Len())
	assert.NotNil(t, c.Items())
	assert.Empty(t, c.Items())
}

func TestEmptyItemsNotNil(t *testing.T) {
	assert.NotNil(t, New().Items())
}

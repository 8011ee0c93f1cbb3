// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	require.NoError(t, err)

	assert.False(t, c.Remember(uint64(1)))
	assert.True(t, c.Remember(uint64(1)))
	assert.False(t, c.Remember(uint64(2)))
	assert.False(t, c.Remember(uint64(3)))

	assert.False(t, c.Contains(uint64(1)), "oldest entry evicted")
	assert.True(t, c.Contains(uint64(3)))
}

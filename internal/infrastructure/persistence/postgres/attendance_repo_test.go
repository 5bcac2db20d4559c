package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAttendanceRepository_QueryTimeout(t *testing.T) {
	repo := NewAttendanceRepository(nil, 5*time.Second)
	assert.Equal(t, 5*time.Second, repo.queryTimeout)

	repo = NewAttendanceRepository(nil, 0)
	assert.Equal(t, defaultQueryTimeout, repo.queryTimeout)

	repo = NewAttendanceRepository(nil, -time.Second)
	assert.Equal(t, defaultQueryTimeout, repo.queryTimeout)
}

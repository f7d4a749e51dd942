package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignUserID(t *testing.T) {
	u := &User{ID: 42}
	u.AssignUserID()
	assert.Equal(t, "USR42", u.UserID)

	admin := &User{ID: 7, IsSuperuser: true}
	admin.AssignUserID()
	assert.Equal(t, "ADM7", admin.UserID)

	staff := &User{ID: 8, IsStaff: true}
	staff.AssignUserID()
	assert.Equal(t, "USR8", staff.UserID)
	assert.Equal(t, RoleUser, staff.Role())
}

func TestQuestionChecks(t *testing.T) {
	q := &Question{CorrectAnswer: "C"}
	assert.True(t, q.Checks("C"))
	assert.True(t, q.Checks(" c "))
	assert.False(t, q.Checks("A"))
	assert.False(t, q.Checks(""))
}

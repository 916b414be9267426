package repository

import (
	"context"

	"github.com/google/uuid"
)

type Profile struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
}

const findProfileById = `
SELECT id, full_name, phone
FROM profiles
WHERE id = $1
`

func (r *OrderRepository) FindProfileById(
	c context.Context,
	userID uuid.UUID,
) (Profile, error) {
	var profile Profile
	err := r.pool.QueryRow(c, findProfileById, userID).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Phone,
	)
	return profile, err
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a document of the users collection.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Age   *float64           `bson:"age,omitempty" json:"age,omitempty"`
}

// Clone returns a deep copy so callers can mutate it without touching the stored value.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Age != nil {
		age := *u.Age
		c.Age = &age
	}
	return &c
}

// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage backends and utils all import types without
// depending on each other.
package types

import "go.mongodb.org/mongo-driver/bson/primitive"

// Student is a student record as it lives in the document store.
//
// Struct tags:
//
//  1. json:"..."  controls the wire shape. The identifier travels as "_id"
//     and is dropped from the body entirely while it is nil.
//  2. bson:"..."  controls the stored document. omitempty on _id lets the
//     store assign the identifier on insert.
//
// ID is a pointer because a zero primitive.ObjectID still encodes as
// "000000000000000000000000"; only nil is truly absent.
type Student struct {
	ID      *primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name    string              `json:"name"          bson:"name"`
	Age     uint8               `json:"age"           bson:"age"`
	Subject string              `json:"subject"       bson:"subject"`
}

// StudentInput is the request body accepted by create and update.
//
// It has no identifier field, so an "_id" sent by a client is silently
// ignored by the JSON decoder and can never overwrite a stored id.
//
// Every field is a pointer so that validate:"required" means "present"
// rather than "non-zero": an empty name or subject and an age of 0 are
// legal values, a missing key is not.
type StudentInput struct {
	Name    *string `json:"name"    validate:"required"`
	Age     *uint8  `json:"age"     validate:"required"`
	Subject *string `json:"subject" validate:"required"`
}

// Student converts a validated input into a Student without an id.
func (in StudentInput) Student() Student {
	var s Student
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Age != nil {
		s.Age = *in.Age
	}
	if in.Subject != nil {
		s.Subject = *in.Subject
	}
	return s
}

// IDHex returns the hex form of the identifier, or "" when it is absent.
func (s Student) IDHex() string {
	if s.ID == nil {
		return ""
	}
	return s.ID.Hex()
}

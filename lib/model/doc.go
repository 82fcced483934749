// Package model defines the three entity kinds served by tengu-travels
// (users, locations, visits), their wire representations, and the partial
// update (patch) types used by the write paths.
//
// Visits carry denormalized snapshot fields copied from their referenced
// user and location. These copies exist so that visit filtering never has
// to follow a reference at query time; the store is responsible for keeping
// them in sync with the referenced entities.
package model

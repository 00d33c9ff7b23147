package game

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	ErrCourseNotFound = errors.New("course not found")
	ErrInputBacklog   = errors.New("input backlog full")
)

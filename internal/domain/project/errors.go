package project

import "errors"

var (
	// ErrProjectNotFound indicates no registry entry has the given name.
	ErrProjectNotFound = errors.New("project not found")
	// ErrConfigNotFound indicates the project root has no config document.
	ErrConfigNotFound = errors.New("project config not found")
	// ErrDuplicateName indicates the project name is already registered.
	ErrDuplicateName = errors.New("project name already registered")
	// ErrDuplicatePath indicates the path is already used by another project.
	ErrDuplicatePath = errors.New("project path already in use")
	// ErrUnknownSetting indicates the setting is not one of KnownSettings.
	ErrUnknownSetting = errors.New("unknown project setting")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
)

package common

const (
	// SuperUserUID is the uid reserved for the user created by the install flow.
	SuperUserUID = "0"

	// SuperUserRole is the initial role given to the install user.
	SuperUserRole = "super"

	// StorageFilesystem is the only implemented storage backend.
	StorageFilesystem = "filesystem"
)

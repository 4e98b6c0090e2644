// Package googledrive adapts the Google Admin Reports and Drive v3 APIs to the
// restore transport interfaces.
//
// Client lists drive "move" audit activity for a destination folder, reads the
// live parents of files, and reparents files with a single update call. Every
// request passes through a shared rate limiter.
package googledrive

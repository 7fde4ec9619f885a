// Package upload turns a local file into attachments that fit the platform's
// per-file ceiling.
//
// Files below the ceiling are sent as-is. Larger files are deflated into a
// temporary single-entry zip archive which is then cut into numbered parts
// ("<name>.zip.001", "<name>.zip.002", ...). Concatenating the parts restores
// the archive. The temporary archive never outlives the Split call.
package upload

package platform

// Package platform contains OS integration glue: directory helpers,
// best-effort cleanup, revealing folders in the file manager, and expanding
// YouTube playlist links into video links.

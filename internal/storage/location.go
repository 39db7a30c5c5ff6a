package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Host segments of the two storage endpoints
const (
	BlobHostSegment = ".blob."
	DFSHostSegment  = ".dfs."
)

// ErrInvalidSASURL is returned for URLs that do not address a file system
var ErrInvalidSASURL = errors.New("invalid SAS URL")

// Location is a SAS-authorized directory inside a Data Lake file system
type Location struct {
	AccountURL string // scheme://account.dfs.core.windows.net
	FileSystem string
	Directory  string // may be empty for the file system root
	SASToken   string // raw query without '?'
}

// ParseSASURL splits a blob or dfs SAS URL into its parts
func ParseSASURL(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidSASURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidSASURL, raw)
	}

	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if parts[0] == "" {
		return Location{}, fmt.Errorf("%w: no file system in %q", ErrInvalidSASURL, u.Path)
	}

	loc := Location{
		AccountURL: u.Scheme + "://" + strings.Replace(u.Host, BlobHostSegment, DFSHostSegment, 1),
		FileSystem: parts[0],
		SASToken:   u.RawQuery,
	}
	if len(parts) == 2 {
		loc.Directory = strings.Trim(parts[1], "/")
	}
	return loc, nil
}

// FileSystemURL returns the file system URL with the SAS token attached
func (l Location) FileSystemURL() string {
	return l.withToken(l.AccountURL + "/" + l.FileSystem)
}

// DirectoryURL returns the directory URL with the SAS token attached
func (l Location) DirectoryURL() string {
	if l.Directory == "" {
		return l.FileSystemURL()
	}
	return l.withToken(l.AccountURL + "/" + l.FileSystem + "/" + l.Directory)
}

// PathOf returns the file system relative path of name inside the directory
func (l Location) PathOf(name string) string {
	if l.Directory == "" {
		return name
	}
	return l.Directory + "/" + name
}

func (l Location) withToken(base string) string {
	if l.SASToken == "" {
		return base
	}
	return base + "?" + l.SASToken
}

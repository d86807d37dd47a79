package certs

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Authority is a pinned certificate authority in PEM form
type Authority struct {
	Name string
	PEM  []byte
}

// Pool returns a certificate pool that trusts only this authority
func (a Authority) Pool() (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(a.PEM) {
		return nil, fmt.Errorf("no certificates found in authority %s", a.Name)
	}
	return pool, nil
}

func (a Authority) String() string {
	return a.Name
}

// Entry pairs a URL fragment with the authority to trust when it matches
type Entry struct {
	Fragment  string
	Authority Authority
}

// Table is an ordered, read-only list of pinned authorities.
// The last entry is the fallback for URLs no fragment matches.
// Build tables with NewTable or Default; a nil or empty table selects the
// zero Authority, which trusts nothing.
type Table struct {
	entries []Entry
}

// ErrEmptyTable is returned when a table would have no fallback entry
var ErrEmptyTable = errors.New("certificate table needs at least one entry")

// NewTable builds a table from entries, ordered from the most to the least specific fragment
func NewTable(entries ...Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return &Table{entries: copied}, nil
}

// Select returns the authority of the first entry whose fragment occurs
// anywhere in url, or the last entry's authority when nothing matches
func (t *Table) Select(url string) Authority {
	if t == nil {
		return Authority{}
	}
	for _, entry := range t.entries {
		if strings.Contains(url, entry.Fragment) {
			return entry.Authority
		}
	}

	return t.fallback()
}

// Entries returns a copy of the table entries in match order
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	copied := make([]Entry, len(t.entries))
	copy(copied, t.entries)
	return copied
}

func (t *Table) fallback() Authority {
	if t == nil || len(t.entries) == 0 {
		return Authority{}
	}
	return t.entries[len(t.entries)-1].Authority
}

// LoadAuthority reads a PEM file and checks it holds at least one certificate
func LoadAuthority(name, path string) (Authority, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Authority{}, fmt.Errorf("failed to read authority %s: %w", name, err)
	}

	authority := Authority{Name: name, PEM: data}
	if _, err := authority.Pool(); err != nil {
		return Authority{}, fmt.Errorf("invalid authority file %s: %w", path, err)
	}

	return authority, nil
}

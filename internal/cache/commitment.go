// Backup/restore signing: every backup blob carries a commitment derived
// from its own contents, checked on restore so a tampered or truncated
// backup file is rejected before it overwrites the live database.
package cache

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"filippo.io/edwards25519"
)

// Backup serializes every entry of every namespace into a portable blob
// and appends a commitment line so Restore can detect corruption (spec.md
// §6.2 `backup|bckp`).
func (c *Cache) Backup() ([]byte, error) {
	namespaces, err := c.ListNamespaces()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	savedNS := c.currNS
	for _, ns := range namespaces {
		c.currNS = ns
		entries, err := c.List()
		if err != nil {
			c.currNS = savedNS
			return nil, err
		}
		for _, e := range entries {
			fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\n", ns, e.ID, joinAliases(e.Aliases), e.Value)
		}
	}
	c.currNS = savedNS

	commitment, err := commit(buf.Bytes())
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "#sentra-cache-backup %s\n", base64.StdEncoding.EncodeToString(commitment))
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// Restore verifies blob's commitment line and loads every entry it lists,
// rejecting anything that doesn't match what Backup would have produced
// for the same body (spec.md §6.2 `restore`).
func (c *Cache) Restore(blob []byte) error {
	nl := bytes.IndexByte(blob, '\n')
	if nl < 0 {
		return fmt.Errorf("malformed backup: missing header")
	}
	header := string(blob[:nl])
	body := blob[nl+1:]

	const prefix = "#sentra-cache-backup "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return fmt.Errorf("malformed backup: missing commitment header")
	}
	want, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return fmt.Errorf("malformed backup: bad commitment encoding: %w", err)
	}
	got, err := commit(body)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("backup commitment mismatch: refusing to restore")
	}

	savedNS := c.currNS
	defer func() { c.currNS = savedNS }()

	for _, line := range bytes.Split(body, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		fields := bytes.SplitN(line, []byte("\t"), 4)
		if len(fields) != 4 {
			return fmt.Errorf("malformed backup line: %q", line)
		}
		ns, id, aliases, value := string(fields[0]), string(fields[1]), string(fields[2]), string(fields[3])
		c.currNS = ns
		_, err := c.db.Exec(`INSERT OR REPLACE INTO entries (ns, id, value, aliases, updated_at) VALUES (?, ?, ?, ?, ?)`,
			ns, id, value, aliases, nowRFC3339())
		if err != nil {
			return err
		}
	}
	return nil
}

// commit derives an Edwards25519 point commitment from data: the
// scalar is SHA-512(data) reduced mod the group order, the commitment is
// that scalar's base-point multiple encoded compressed. Two blobs with the
// same bytes always commit to the same point; a single bit flip does not.
func commit(data []byte) ([]byte, error) {
	h := sha512.Sum512(data)
	s, err := edwards25519.NewScalar().SetUniformBytes(h[:])
	if err != nil {
		return nil, err
	}
	point := new(edwards25519.Point).ScalarBaseMult(s)
	return point.Bytes(), nil
}

package spritepack

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// fingerprint is a content-addressable digest of a sprite's pixel data.
type fingerprint [sha256.Size]byte

// pixelFingerprint hashes the sprite's dimensions and raw NRGBA bytes, so two
// sprites compare equal exactly when their rasterized bitmaps are
// byte-identical.
func pixelFingerprint(s *Sprite) fingerprint {
	h := sha256.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(s.Width()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(s.Height()))
	h.Write(dims[:])
	h.Write(s.img.Pix)
	var fp fingerprint
	h.Sum(fp[:0])
	return fp
}

// dedupe collapses byte-identical sprites into one canonical entry. The first
// name (in lexicographic order) that produced a fingerprint stays canonical;
// every later name with the same fingerprint becomes an alias of it. It
// returns the reduced name set and the canonical-name to alias-names map,
// alias lists in first-seen order.
func dedupe(sprites map[string]*Sprite) (map[string]*Sprite, map[string][]string) {
	unique := make(map[string]*Sprite, len(sprites))
	aliases := make(map[string][]string)
	seen := make(map[fingerprint]string)

	for _, name := range sortedNames(sprites) {
		sprite := sprites[name]
		fp := pixelFingerprint(sprite)
		if canonical, ok := seen[fp]; ok {
			aliases[canonical] = append(aliases[canonical], name)
			continue
		}
		seen[fp] = name
		unique[name] = sprite
	}
	return unique, aliases
}

// sortedNames returns the sprite names in lexicographic order.
func sortedNames(sprites map[string]*Sprite) []string {
	names := make([]string, 0, len(sprites))
	for name := range sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

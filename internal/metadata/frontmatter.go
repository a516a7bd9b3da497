// Package metadata holds recipe metadata: the YAML frontmatter split, the
// ordered key/value map and the parsed special keys (tags, servings, time,
// source and friends).
package metadata

import "strings"

// Split is the result of separating YAML frontmatter from the recipe body.
// Offsets are bytes into the original content, so spans into either part
// stay valid against the file.
type Split struct {
	YAML       string
	YAMLOffset uint32
	Body       string
	BodyOffset uint32
}

const yamlFence = "---"

// SplitFrontmatter finds a leading `---` fenced YAML block. Returns false
// when the content has no complete frontmatter, in which case the whole
// content is the body.
func SplitFrontmatter(content string) (Split, bool) {
	first, ok := nextFence(content, 0)
	if !ok {
		return Split{Body: content}, false
	}
	// only blank lines may precede the opening fence
	if strings.TrimSpace(content[:first.start]) != "" {
		return Split{Body: content}, false
	}
	second, ok := nextFence(content, first.end)
	if !ok {
		return Split{Body: content}, false
	}
	return Split{
		YAML:       content[first.end:second.start],
		YAMLOffset: uint32(first.end),
		Body:       content[second.end:],
		BodyOffset: uint32(second.end),
	}, true
}

type fencePos struct {
	start, end int
}

// nextFence finds the next line that is exactly the fence, ignoring
// trailing whitespace. end includes the line terminator.
func nextFence(content string, from int) (fencePos, bool) {
	off := from
	for off < len(content) {
		lineEnd := strings.IndexByte(content[off:], '\n')
		var line string
		var end int
		if lineEnd < 0 {
			line = content[off:]
			end = len(content)
		} else {
			line = content[off : off+lineEnd]
			end = off + lineEnd + 1
		}
		if strings.TrimRight(line, " \t\r") == yamlFence {
			return fencePos{start: off, end: end}, true
		}
		off = end
	}
	return fencePos{}, false
}

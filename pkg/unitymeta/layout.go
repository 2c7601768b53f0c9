package unitymeta

import (
	"strings"
)

// unityLayout rewrites encoder output into the layout the Unity editor
// writes, so an untouched sidecar encodes to its original bytes:
//
//   - block sequences under a mapping key start at the key's column
//     ("key:\n- item") instead of two columns deeper
//   - keys with an empty scalar value keep a trailing space ("userData: ")
//
// Block scalar contents are shifted with their parent and otherwise left
// alone.
func unityLayout(in []byte) []byte {
	text := strings.TrimSuffix(string(in), "\n")
	if text == "" {
		return in
	}
	lines := strings.Split(text, "\n")

	var (
		out    strings.Builder
		seqs   []int // encoder column of each open block sequence's dash
		scalar = -1  // key column of an open block scalar
	)
	out.Grow(len(in) + len(lines))

	for i, line := range lines {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			out.WriteByte('\n')
			continue
		}
		indent := len(line) - len(content)

		if scalar >= 0 {
			if indent > scalar {
				out.WriteString(line[2*len(seqs):])
				out.WriteByte('\n')
				continue
			}
			scalar = -1
		}

		for len(seqs) > 0 && indent < seqs[len(seqs)-1] {
			seqs = seqs[:len(seqs)-1]
		}
		shift := 2 * len(seqs)

		dashes, entry := splitDashes(content)
		keyCol := indent + dashes

		switch {
		case isBareKey(entry):
			next, nextIndent := nextLine(lines, i)
			nextDashes, _ := splitDashes(next)
			switch {
			case next == "":
				line += " "
			case nextDashes > 0 && nextIndent == keyCol+encodeIndent:
				seqs = append(seqs, nextIndent)
			case nextDashes > 0 && nextIndent == keyCol:
			case nextIndent > keyCol:
			default:
				line += " "
			}
		case isBlockScalarHeader(entry):
			scalar = keyCol
		}

		out.WriteString(line[shift:])
		out.WriteByte('\n')
	}

	return []byte(out.String())
}

// splitDashes strips leading sequence indicators and returns the number of
// columns they took.
func splitDashes(content string) (int, string) {
	n := 0
	for {
		switch {
		case strings.HasPrefix(content, "- "):
			content = content[2:]
			n += 2
		case content == "-":
			return n + 1, ""
		default:
			return n, content
		}
	}
}

// isBareKey reports whether entry is a mapping key with nothing after the
// colon.
func isBareKey(entry string) bool {
	if entry == "" || entry[0] == '#' || !strings.HasSuffix(entry, ":") {
		return false
	}
	return !strings.Contains(entry, ": ")
}

func isBlockScalarHeader(entry string) bool {
	i := strings.LastIndex(entry, ": ")
	if i < 0 {
		return false
	}
	v := entry[i+2:]
	return v != "" && (v[0] == '|' || v[0] == '>')
}

// nextLine returns the next non-blank line after i and its indentation.
func nextLine(lines []string, i int) (string, int) {
	for _, l := range lines[i+1:] {
		content := strings.TrimLeft(l, " ")
		if content != "" {
			return content, len(l) - len(content)
		}
	}
	return "", 0
}

package bndl

import (
	"regexp"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

var (
	createRe  = regexp.MustCompile(`^Create\s+(\S+)\s+"([^"]*)"(?:\s+"([^"]*)")?\s*$`)
	renameRe  = regexp.MustCompile(`^Rename\s+\[\s*(.*?)\s*\]\s+to\s+~\s*(.*?)\s*~\s*$`)
	declareRe = regexp.MustCompile(`^Declare\s+(Inputs|Outputs)\s+\[[^\]]*\]\s+~~\s*(.*)$`)
	setRe     = regexp.MustCompile(`^Set\s+\[\s*(.*?)\s*\]\s*$`)
	entryRe   = regexp.MustCompile(`^"([^"]+)"\s+to\s+(.*)$`)
	parentRe  = regexp.MustCompile(`^Parent\s+\[\s*(.*?)\s*\]\s+to\s+\[\s*(.*?)\s*\]\s*$`)

	connectRe = regexp.MustCompile(`^Connect\s+\[\s*(.*?)\s*\]\s+` + glyphOut +
		`\s+(.*?)\s+to\s+\[\s*(.*?)\s*\]\s+` + glyphIn + `\s+(.*?)\s*$`)

	// Older exports wrote top-level connections with quoted identities and
	// no socket glyphs. Accepted on input, never emitted.
	connectQuotedRe = regexp.MustCompile(`^Connect\s+"([^"]*)"\s+"([^"]*)"\s+to\s+"([^"]*)"\s+"([^"]*)"\s*$`)
)

// Parse reads BNDL text into a [Document]. Structural faults, like an
// unmatched or nested group block or a line that fits no statement grammar,
// abort with a PARSE_ERROR naming the line. Recoverable conditions (missing headers,
// undecodable Set values, duplicate group names) are collected into
// [Document.Warnings] and parsing continues.
func Parse(content []byte) (*Document, error) {
	lines := strings.Split(string(content), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	doc := &Document{Top: &Block{}}

	notes, consumed := parseNotes(lines)
	doc.Notes = notes
	doc.Header = parseHeader(lines[consumed:], &doc.Warnings)

	p := &parser{doc: doc, block: doc.Top}
	for i := consumed; i < len(lines); i++ {
		if err := p.line(i+1, lines[i]); err != nil {
			return nil, err
		}
	}
	p.flushSet()
	if p.group != nil {
		return nil, errors.New(errors.ErrCodeParse, "group %q is never closed", p.group.Name)
	}
	return doc, nil
}

type parser struct {
	doc   *Document
	block *Block // statement destination: open group or doc.Top
	group *Block // non-nil while inside START/END GROUP
	set   *Set   // pending Set collecting continuation entries
}

func (p *parser) line(num int, raw string) error {
	line := strings.TrimSpace(raw)

	switch {
	case line == "":
		p.flushSet()
		return nil
	case strings.HasPrefix(line, "#"), strings.HasPrefix(line, ";"):
		p.flushSet()
		return nil
	case strings.HasPrefix(line, "Tree_Type:"):
		return nil
	case strings.HasPrefix(line, startGroupPrefix):
		p.flushSet()
		return p.startGroup(num, strings.TrimSpace(strings.TrimPrefix(line, startGroupPrefix)))
	case strings.HasPrefix(line, endGroupPrefix):
		p.flushSet()
		return p.endGroup(num, strings.TrimSpace(strings.TrimPrefix(line, endGroupPrefix)))
	}

	if kw, ok := statementKeyword(line); ok {
		p.flushSet()
		return p.statement(num, kw, line)
	}

	// Indented "prop" to value continuation of the pending Set.
	if strings.HasPrefix(line, `"`) && raw != line {
		if p.set == nil {
			return errors.New(errors.ErrCodeParse, "line %d: property entry outside a Set statement", num)
		}
		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			return errors.New(errors.ErrCodeParse, "line %d: malformed property entry", num)
		}
		entry := SetEntry{Prop: m[1], Raw: strings.TrimSpace(m[2]), Line: num}
		v, err := decodeValue(entry.Raw)
		if err != nil {
			p.doc.Warnings.Add(errors.ErrCodeParse, "line %d: unparseable value for %q: %v", num, entry.Prop, err)
		} else {
			entry.Value = v
		}
		p.set.Entries = append(p.set.Entries, entry)
		return nil
	}

	return errors.New(errors.ErrCodeParse, "line %d: unrecognized line %q", num, line)
}

func (p *parser) startGroup(num int, name string) error {
	if p.group != nil {
		return errors.New(errors.ErrCodeParse, "line %d: group %q opened inside group %q", num, name, p.group.Name)
	}
	if name == "" {
		return errors.New(errors.ErrCodeParse, "line %d: group block without a name", num)
	}
	if p.doc.Group(name) != nil {
		p.doc.Warnings.Add(errors.ErrCodeParse, "line %d: duplicate group block %q; first definition wins", num, name)
	}
	p.group = &Block{Name: name}
	p.block = p.group
	return nil
}

func (p *parser) endGroup(num int, name string) error {
	if p.group == nil {
		return errors.New(errors.ErrCodeParse, "line %d: END GROUP %q without a matching START", num, name)
	}
	if name != p.group.Name {
		return errors.New(errors.ErrCodeParse, "line %d: END GROUP %q does not match open group %q", num, name, p.group.Name)
	}
	p.doc.Groups = append(p.doc.Groups, p.group)
	p.group = nil
	p.block = p.doc.Top
	return nil
}

func (p *parser) statement(num int, kw, line string) error {
	switch kw {
	case "Create":
		m := createRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		p.append(Create{TypeID: m[1], Instance: normalizeIdentity(m[2]), Variant: m[3], Line: num})
		return nil

	case "Rename":
		m := renameRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		p.append(Rename{Instance: normalizeIdentity(m[1]), Label: m[2], Line: num})
		return nil

	case "Declare":
		m := declareRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		sockets := p.declareSockets(num, m[2])
		p.append(Declare{Output: m[1] == "Outputs", Sockets: sockets, Line: num})
		return nil

	case "Set":
		m := setRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		p.set = &Set{Instance: normalizeIdentity(m[1]), Line: num}
		return nil

	case "Connect":
		if m := connectRe.FindStringSubmatch(line); m != nil {
			p.append(Connect{
				From: normalizeIdentity(m[1]), FromSocket: ParseSocketRef(m[2]),
				To: normalizeIdentity(m[3]), ToSocket: ParseSocketRef(m[4]),
				Line: num,
			})
			return nil
		}
		if m := connectQuotedRe.FindStringSubmatch(line); m != nil {
			p.append(Connect{
				From: normalizeIdentity(m[1]), FromSocket: ParseSocketRef(m[2]),
				To: normalizeIdentity(m[3]), ToSocket: ParseSocketRef(m[4]),
				Line: num,
			})
			return nil
		}

	case "Parent":
		m := parentRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		p.append(Parent{Child: normalizeIdentity(m[1]), Frame: normalizeIdentity(m[2]), Line: num})
		return nil
	}
	return errors.New(errors.ErrCodeParse, "line %d: malformed %s statement", num, kw)
}

// declareSockets splits a "name:type | name:type" interface list. Names may
// contain spaces and dots, so the type separator is the last colon. Entries
// without a colon are skipped with a warning.
func (p *parser) declareSockets(num int, list string) []tree.InterfaceSocket {
	var sockets []tree.InterfaceSocket
	for _, part := range strings.Split(list, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.LastIndex(part, ":")
		if i <= 0 || i == len(part)-1 {
			p.doc.Warnings.Add(errors.ErrCodeParse, "line %d: malformed interface socket %q", num, part)
			continue
		}
		sockets = append(sockets, tree.InterfaceSocket{
			Name: strings.TrimSpace(part[:i]),
			Type: strings.TrimSpace(part[i+1:]),
		})
	}
	return sockets
}

func (p *parser) append(s Statement) {
	p.block.Statements = append(p.block.Statements, s)
}

func (p *parser) flushSet() {
	if p.set != nil {
		p.block.Statements = append(p.block.Statements, *p.set)
		p.set = nil
	}
}

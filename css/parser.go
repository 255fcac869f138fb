package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into mutable trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional name identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, name ...string) (*Stylesheet, error) {
	if len(name) > 0 && name[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", name[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	nodes, err := p.parseNodes(parser, &source{data: data}, css.ErrorGrammar)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Nodes: nodes}, nil
}

// parseNodes collects nodes until grammar event "end" or end of input.
// Unterminated blocks are closed silently at end of input.
func (p *Parser) parseNodes(parser *css.Parser, src *source, end css.GrammarType) ([]Node, error) {
	nodes := make([]Node, 0)

	for {
		gt, _, data := parser.Next()
		// raw text consumed by this event, tokens lose spacing and letter case
		span := src.next(parser.Offset())

		if gt == end && end != css.ErrorGrammar {
			return append(nodes, leadingComments(span)...), nil
		}

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, parseError(err)
			}
			return nodes, nil

		case css.CommentGrammar:
			nodes = append(nodes, &Comment{Text: string(data)})

		case css.AtRuleGrammar:
			nodes = append(nodes, leadingComments(span)...)
			nodes = append(nodes, newAtRule(string(data), span, parser.Values()))

		case css.BeginAtRuleGrammar:
			nodes = append(nodes, leadingComments(span)...)
			at := newAtRule(string(data), span, parser.Values())
			at.Block = true
			children, err := p.parseNodes(parser, src, css.EndAtRuleGrammar)
			if err != nil {
				return nil, err
			}
			at.Children = children
			p.log.Debug("Parsed at-rule block", zap.String("rule", at.Name), zap.String("prelude", at.Prelude), zap.Int("children", len(children)))
			nodes = append(nodes, at)

		case css.BeginRulesetGrammar:
			nodes = append(nodes, leadingComments(span)...)
			sel := selectorText(span, parser.Values())
			children, err := p.parseNodes(parser, src, css.EndRulesetGrammar)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Rule{Selector: sel, Children: children})

		case css.DeclarationGrammar:
			nodes = append(nodes, leadingComments(span)...)
			nodes = append(nodes, sourceDeclaration(span, newDeclaration(string(data), parser.Values())))

		case css.CustomPropertyGrammar:
			// value of custom property is kept as is by the tokenizer
			nodes = append(nodes, leadingComments(span)...)
			nodes = append(nodes, newDeclaration(string(data), parser.Values()))

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			// stray closing brace at this level
			p.log.Debug("Ignoring unbalanced block end", zap.Stringer("grammar", gt))

		default:
			p.log.Debug("Ignoring token", zap.Stringer("grammar", gt), zap.ByteString("data", data))
		}
	}
}

// newDeclaration builds declaration from value tokens, recognizing trailing
// "!important".
func newDeclaration(property string, tokens []css.Token) *Declaration {
	tokens = trimWhitespace(tokens)

	important := false
	if n := len(tokens); n >= 2 && tokens[n-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[n-1].Data), "important") {
		rest := trimWhitespace(tokens[:n-1])
		if m := len(rest); m > 0 && rest[m-1].TokenType == css.DelimToken && string(rest[m-1].Data) == "!" {
			important = true
			tokens = rest[:m-1]
		}
	}

	return &Declaration{
		Property:  strings.TrimSpace(property),
		Value:     tokensText(tokens),
		Important: important,
	}
}

// source hands out raw stylesheet text consumed by consecutive grammar
// events.
type source struct {
	data []byte
	pos  int
}

// next returns text between previous event and offset.
func (s *source) next(offset int) []byte {
	offset = min(max(offset, s.pos), len(s.data))
	span := s.data[s.pos:offset]
	s.pos = offset
	return span
}

// skipLeading drops whitespace, stray semicolons and comments preceding
// event text, returning the comments.
func skipLeading(span []byte) ([]string, []byte) {
	var comments []string
	for {
		span = bytes.TrimLeft(span, " \t\n\r\f;")
		if !bytes.HasPrefix(span, []byte("/*")) {
			return comments, span
		}
		i := bytes.Index(span[2:], []byte("*/"))
		if i < 0 {
			return comments, nil
		}
		comments = append(comments, string(span[:i+4]))
		span = span[i+4:]
	}
}

// leadingComments turns comments the grammar skips inside blocks into
// nodes.
func leadingComments(span []byte) []Node {
	comments, _ := skipLeading(span)
	nodes := make([]Node, 0, len(comments))
	for _, c := range comments {
		nodes = append(nodes, &Comment{Text: c})
	}
	return nodes
}

// cutTerminator strips event text of the token which ended it.
func cutTerminator(span []byte, terminators string) []byte {
	span = bytes.TrimRight(span, " \t\n\r\f")
	if n := len(span); n > 0 && strings.IndexByte(terminators, span[n-1]) >= 0 {
		span = span[:n-1]
	}
	return span
}

// selectorText returns selector as written, with whitespace collapsed.
func selectorText(span []byte, tokens []css.Token) string {
	_, span = skipLeading(span)
	if sel := collapseSpace(cutTerminator(span, "{")); len(sel) > 0 {
		return sel
	}
	return tokensText(tokens)
}

// newAtRule keeps at-rule name and prelude as written.
func newAtRule(name string, span []byte, tokens []css.Token) *AtRule {
	at := &AtRule{Name: name, Prelude: tokensText(tokens)}

	_, span = skipLeading(span)
	if len(span) < len(name) || !strings.EqualFold(string(span[:len(name)]), name) {
		return at
	}
	at.Name = string(span[:len(name)])
	at.Prelude = collapseSpace(cutTerminator(span[len(name):], ";{"))
	return at
}

// sourceDeclaration replaces property and value of d with text as written
// when event text can be matched with parsed tokens.
func sourceDeclaration(span []byte, d *Declaration) *Declaration {
	_, span = skipLeading(span)
	name, value, ok := bytes.Cut(cutTerminator(span, ";}"), []byte(":"))
	if !ok {
		return d
	}
	if n := strings.TrimSpace(string(name)); strings.EqualFold(n, d.Property) {
		d.Property = n
	}
	if d.Important {
		i := importantIndex(value)
		if i < 0 {
			return d
		}
		value = value[:i]
	}
	if v := collapseSpace(value); len(v) > 0 {
		d.Value = v
	}
	return d
}

// importantIndex returns position of "!" starting trailing "!important".
func importantIndex(value []byte) int {
	for i := bytes.LastIndexByte(value, '!'); i >= 0; i = bytes.LastIndexByte(value[:i], '!') {
		rest := bytes.TrimSpace(value[i+1:])
		if len(rest) >= len("important") && strings.EqualFold(string(rest[:len("important")]), "important") {
			return i
		}
	}
	return -1
}

// collapseSpace trims text and replaces whitespace runs outside of strings
// with a single space.
func collapseSpace(text []byte) string {
	var sb strings.Builder
	var quote byte
	space := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote == 0 && isSpace(c) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteByte(c)

		switch {
		case c == '\\' && i+1 < len(text):
			i++
			sb.WriteByte(text[i])
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		}
	}
	return sb.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// tokensText concatenates token data collapsing whitespace runs to a single
// space and trimming the result.
func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

func trimWhitespace(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].TokenType == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func parseError(err error) error {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return fmt.Errorf("unable to parse stylesheet at line %d, column %d: %w", perr.Line, perr.Column, err)
	}
	return fmt.Errorf("unable to parse stylesheet: %w", err)
}

package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	minChunkSize = 50
	maxChunkSize = 700 // Max runes per chunk (targets ~450 tokens for 512-token embedding model)
)

// Chunker splits document content into embedding-sized chunks. Markdown is
// parsed with goldmark and split on heading boundaries; plain text is split
// on blank lines.
type Chunker struct {
	parser goldmark.Markdown
}

// NewChunker creates a new chunker.
func NewChunker() *Chunker {
	return &Chunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ChunkMarkdown parses markdown content and returns the title and chunks.
// Chunks follow the heading hierarchy with size constraints applied.
func (c *Chunker) ChunkMarkdown(content []byte, filename string) (title string, chunks []Chunk, err error) {
	if len(content) == 0 {
		return titleFromFilename(filename), []Chunk{}, nil
	}

	reader := text.NewReader(content)
	doc := c.parser.Parser().Parse(reader)

	title = extractTitle(doc, content, filename)
	chunks = c.buildChunks(doc, content, title)
	chunks = applySizeConstraints(chunks)

	return title, chunks, nil
}

// ChunkText splits plain text content on blank lines, then applies the same
// size constraints as markdown chunks. The section for every chunk is the
// document title.
func (c *Chunker) ChunkText(content []byte, filename string) (title string, chunks []Chunk, err error) {
	title = titleFromFilename(filename)
	if len(content) == 0 {
		return title, []Chunk{}, nil
	}

	section := "# " + title
	for i, block := range strings.Split(string(content), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: i, Section: section, Text: block})
	}
	chunks = applySizeConstraints(chunks)
	return title, chunks, nil
}

// extractTitle picks the document title: first # heading, else first
// ## heading, else the filename with words capitalized.
func extractTitle(doc ast.Node, content []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if heading, ok := n.(*ast.Heading); ok {
			headingText := nodeText(heading, content)
			if heading.Level == 1 && firstH1 == "" {
				firstH1 = headingText
			} else if heading.Level == 2 && firstH2 == "" && firstH1 == "" {
				firstH2 = headingText
			}
			if firstH1 != "" {
				return ast.WalkStop, nil
			}
		}

		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

// titleFromFilename removes the extension and capitalizes each word.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}

	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		}
	}
	return strings.Join(words, " ")
}

// headingInfo tracks heading level and text for building section trails.
type headingInfo struct {
	level int
	text  string
}

// buildChunks walks the AST and starts a new chunk at each heading.
func (c *Chunker) buildChunks(doc ast.Node, content []byte, docTitle string) []Chunk {
	var chunks []Chunk
	var current *Chunk
	var stack []headingInfo
	chunkIndex := 0

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			chunks = append(chunks, *current)
			chunkIndex++
		}
		current = nil
	}

	appendText := func(s string) {
		if current == nil {
			// Content before the first heading falls under the document title.
			current = &Chunk{Index: chunkIndex, Section: "# " + docTitle}
		}
		current.Text += s
	}

	ensureNewline := func() {
		if current != nil && len(current.Text) > 0 && !strings.HasSuffix(current.Text, "\n") {
			current.Text += "\n"
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingInfo{level: node.Level, text: nodeText(node, content)})

			flush()
			current = &Chunk{Index: chunkIndex, Section: sectionTrail(stack)}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			appendText(string(node.Segment.Value(content)))

		case *ast.String:
			appendText(string(node.Value))

		case *ast.CodeBlock:
			ensureNewline()
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				appendText(string(seg.Value(content)))
			}

		case *ast.FencedCodeBlock:
			ensureNewline()
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				appendText(string(seg.Value(content)))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			ensureNewline()

		default:
			// Table extension nodes are matched by kind name so the package
			// doesn't import the extension's AST types directly.
			kind := n.Kind().String()
			switch {
			case strings.Contains(kind, "TableRow") || strings.Contains(kind, "TableHeader"):
				ensureNewline()
				appendText(tableRowText(n, content))
				appendText("\n")
				return ast.WalkSkipChildren, nil
			case strings.Contains(kind, "TableCell"):
				return ast.WalkSkipChildren, nil
			case strings.Contains(kind, "Table"):
				ensureNewline()
			}
		}

		return ast.WalkContinue, nil
	})

	flush()

	// A document with no headings and no collected text still becomes one chunk.
	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{
			Index:   0,
			Section: "# " + docTitle,
			Text:    strings.TrimSpace(string(content)),
		})
	}

	return chunks
}

// sectionTrail renders the heading stack: "# Heading1 > ## Heading2".
func sectionTrail(stack []headingInfo) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", h.level), h.text)
	}
	return strings.Join(parts, " > ")
}

// nodeText extracts the flattened text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// tableRowText joins the row's cell texts with pipe separators.
func tableRowText(row ast.Node, content []byte) string {
	var b strings.Builder
	cells := 0

	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			if cells > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(nodeText(node, content))
			cells++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// applySizeConstraints merges undersized chunks into their successor and
// splits oversized chunks. Sizes are measured in runes to line up with the
// embedding model's token estimate.
func applySizeConstraints(chunks []Chunk) []Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	var result []Chunk
	i := 0

	for i < len(chunks) {
		current := chunks[i]

		// Merge chunks that share a section, then chunks below the minimum size,
		// as long as the merge stays within the maximum.
		for i+1 < len(chunks) {
			next := chunks[i+1]
			sameSection := current.Section == next.Section && current.Section != ""
			tooSmall := utf8.RuneCountInString(current.Text) < minChunkSize
			if !sameSection && !tooSmall {
				break
			}
			merged := current.Text + "\n\n" + next.Text
			if utf8.RuneCountInString(merged) > maxChunkSize {
				break
			}
			current.Text = merged
			i++
		}

		if utf8.RuneCountInString(current.Text) > maxChunkSize {
			result = append(result, splitChunk(current)...)
		} else {
			result = append(result, current)
		}
		i++
	}

	for i := range result {
		result[i].Index = i
	}
	return result
}

// splitChunk splits an oversized chunk, preferring paragraph boundaries,
// then line boundaries, then sentence boundaries, then a hard split.
func splitChunk(chunk Chunk) []Chunk {
	runes := []rune(chunk.Text)
	if len(runes) <= maxChunkSize {
		return []Chunk{chunk}
	}

	var splits []Chunk
	start := 0

	for start < len(runes) {
		end := start + maxChunkSize
		if end >= len(runes) {
			splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:])})
			break
		}

		window := string(runes[start:end])
		splitPoint := end
		if p := strings.LastIndex(window, "\n\n"); p != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:p]) + 2
		} else if p := strings.LastIndex(window, "\n"); p != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:p]) + 1
		} else if p := strings.LastIndex(window, ". "); p != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:p]) + 2
		}

		splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:splitPoint])})
		start = splitPoint
	}

	return splits
}

package parser

import (
	"fmt"

	"fortio.org/safecast"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/lexer"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree   *ast.Tree
	Bag    *diag.Bag
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	tree     *ast.Tree
	toks     []token.Token // значимые токены, последний всегда EOF
	pos      int
	opts     Options
	lastSpan source.Span // span последнего съеденного токена

	fnDepth int  // вложенность функций, для return
	noIn    bool // запрет `in` как бинарного оператора (заголовок for)
}

// ParseFile лексит и разбирает один файл. Лексические и синтаксические
// ошибки уходят в opts.Reporter; дерево строится всегда.
func ParseFile(file *source.File, opts Options) Result {
	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case *diag.BagReporter:
		bag = br.Bag
	case diag.BagReporter:
		bag = br.Bag
	}
	if opts.Reporter != nil {
		opts.Reporter = diag.NewDedupReporter(opts.Reporter)
	}
	toks, comments := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})

	p := Parser{
		tree: ast.NewTree(file, uint(len(toks))),
		toks: toks,
		opts: opts,
		lastSpan: source.Span{
			File: file.ID,
		},
	}
	p.tree.Tokens = toks[:len(toks)-1]
	p.tree.Comments = comments

	p.tree.Root = p.parseProgram()
	p.tree.LinkParents()

	return Result{
		Tree:   p.tree,
		Bag:    bag,
		Errors: p.opts.CurrentErrors,
	}
}

// parseProgram: основной цикл верхнего уровня: пока не EOF: parseStatement.
func (p *Parser) parseProgram() ast.NodeID {
	file := p.tree.File
	end, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("file too large: %w", err))
	}
	prog := p.tree.New(ast.Program, source.Span{File: file.ID, Start: 0, End: end})
	var body []ast.NodeID
	for !p.atEOF() {
		if p.opts.Enough() {
			p.report(diag.SynTooManyErrors, diag.SevError, p.peek().Span, "too many syntax errors, giving up")
			body = append(body, p.badStatementToEOF())
			break
		}
		body = append(body, p.parseStatementOrBad())
	}
	p.tree.Node(prog).List = body
	return prog
}

func (p *Parser) badStatementToEOF() ast.NodeID {
	start := p.peek().Span
	for !p.atEOF() {
		p.advance()
	}
	return p.tree.New(ast.BadStatement, start.Cover(p.lastSpan))
}

package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/you-not-fish/scl/internal/syntax"
)

// Frontend implements FrontendServer on top of the syntax package.
type Frontend struct {
	maxDepth int
	logger   *slog.Logger
}

// NewFrontend returns a Frontend whose parser nesting limit is maxDepth.
func NewFrontend(maxDepth int, logger *slog.Logger) *Frontend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Frontend{maxDepth: maxDepth, logger: logger}
}

type request struct {
	source   string
	filename string
}

func decodeRequest(in *structpb.Struct) (request, error) {
	fields := in.GetFields()
	src, ok := fields["source"]
	if !ok {
		return request{}, status.Error(codes.InvalidArgument, `missing field "source"`)
	}
	if _, ok := src.GetKind().(*structpb.Value_StringValue); !ok {
		return request{}, status.Error(codes.InvalidArgument, `field "source" must be a string`)
	}
	return request{
		source:   src.GetStringValue(),
		filename: defaultFilename(fields["filename"].GetStringValue()),
	}, nil
}

// defaultFilename names anonymous sources.
func defaultFilename(name string) string {
	if name == "" {
		return "<input>"
	}
	return name
}

// Tokenize implements FrontendServer.
func (f *Frontend) Tokenize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	toks, diags := syntax.TokenizeFile(req.filename, req.source)

	f.logger.Debug("tokenized",
		"request_id", GetRequestID(ctx),
		"file", req.filename,
		"tokens", len(toks),
		"diagnostics", len(diags),
	)
	return newResponse(map[string]interface{}{
		"tokens":      tokenRecords(toks),
		"diagnostics": diagRecords(diags),
	})
}

// Parse implements FrontendServer. Lexical and syntax diagnostics are
// returned together in report order: lexical first.
func (f *Frontend) Parse(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	toks, lexDiags := syntax.TokenizeFile(req.filename, req.source)
	p := syntax.NewParser(toks, syntax.WithMaxDepth(f.maxDepth))
	prog, diags := p.Parse()
	all := append(lexDiags, diags...)

	f.logger.Debug("parsed",
		"request_id", GetRequestID(ctx),
		"file", req.filename,
		"statements", len(prog.Stmts),
		"diagnostics", len(all),
	)

	symbols := make([]interface{}, 0, p.Symbols().Len())
	for _, name := range p.Symbols().Names() {
		symbols = append(symbols, name)
	}
	return newResponse(map[string]interface{}{
		"tokens":      tokenRecords(toks),
		"tree":        syntax.ToMap(prog),
		"symbols":     symbols,
		"diagnostics": diagRecords(all),
	})
}

func newResponse(m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func tokenRecords(toks []syntax.Token) []interface{} {
	out := make([]interface{}, len(toks))
	for i, t := range toks {
		out[i] = syntax.TokenToMap(t)
	}
	return out
}

func diagRecords(diags []syntax.Diagnostic) []interface{} {
	out := make([]interface{}, len(diags))
	for i, d := range diags {
		out[i] = syntax.DiagnosticToMap(d)
	}
	return out
}

package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/you-not-fish/scl/internal/syntax"
)

// Client calls a remote Frontend service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target without transport security. Extra options are
// appended to the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(ClientRequestIDInterceptor()),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ParseResult is the decoded response of a Parse call.
type ParseResult struct {
	Program     *syntax.Program
	Tokens      []syntax.Token
	Symbols     []string
	Diagnostics []syntax.Diagnostic
}

// Tokenize tokenizes src remotely.
func (c *Client) Tokenize(ctx context.Context, filename, src string) ([]syntax.Token, []syntax.Diagnostic, error) {
	filename = defaultFilename(filename)
	resp, err := c.call(ctx, TokenizeMethod, filename, src)
	if err != nil {
		return nil, nil, err
	}
	toks, err := decodeTokens(resp["tokens"], filename)
	if err != nil {
		return nil, nil, err
	}
	diags, err := decodeDiagnostics(resp["diagnostics"])
	if err != nil {
		return nil, nil, err
	}
	return toks, diags, nil
}

// Parse tokenizes and parses src remotely.
func (c *Client) Parse(ctx context.Context, filename, src string) (*ParseResult, error) {
	filename = defaultFilename(filename)
	resp, err := c.call(ctx, ParseMethod, filename, src)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{}
	if res.Tokens, err = decodeTokens(resp["tokens"], filename); err != nil {
		return nil, err
	}
	if res.Diagnostics, err = decodeDiagnostics(resp["diagnostics"]); err != nil {
		return nil, err
	}

	tree, ok := resp["tree"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("response has no tree")
	}
	n, err := syntax.FromMap(tree)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if res.Program, ok = n.(*syntax.Program); !ok {
		return nil, fmt.Errorf("decode tree: root is %T", n)
	}

	syms, _ := resp["symbols"].([]interface{})
	for _, s := range syms {
		if name, ok := s.(string); ok {
			res.Symbols = append(res.Symbols, name)
		}
	}
	return res, nil
}

// Health reports whether the Frontend service is serving.
func (c *Client) Health(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *Client) call(ctx context.Context, method, filename, src string) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"source":   src,
		"filename": filename,
	})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp.AsMap(), nil
}

func decodeTokens(v interface{}, filename string) ([]syntax.Token, error) {
	list, _ := v.([]interface{})
	toks := make([]syntax.Token, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("token %d is not a record", i)
		}
		t, err := syntax.TokenFromMap(m, filename)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		toks = append(toks, t)
	}
	return toks, nil
}

func decodeDiagnostics(v interface{}) ([]syntax.Diagnostic, error) {
	list, _ := v.([]interface{})
	var diags []syntax.Diagnostic
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("diagnostic %d is not a record", i)
		}
		d, err := syntax.DiagnosticFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("diagnostic %d: %w", i, err)
		}
		diags = append(diags, d)
	}
	return diags, nil
}

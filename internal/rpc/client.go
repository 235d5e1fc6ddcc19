package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/observability/tracing"
	"github.com/RowanDark/enigma/internal/service"
)

// Client calls a remote enigma.v1.Enigma service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr without transport security. Extra dial options are
// appended after the defaults.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(tracing.UnaryClientInterceptor()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Process sends text with the given key. A zero key asks the server to use
// its defaults.
func (c *Client) Process(ctx context.Context, in enigma.SettingsInput, text string) (service.Result, error) {
	req := map[string]interface{}{"text": text}
	if len(in.Rotors) > 0 || in.Positions != "" || in.Rings != "" || in.Reflector != "" || in.Plugboard != "" {
		req["settings"] = cipher.KeyParams(in)
	}
	msg, err := structpb.NewStruct(req)
	if err != nil {
		return service.Result{}, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodProcess, msg, out); err != nil {
		return service.Result{}, err
	}
	res := service.Result{
		Output:  out.GetFields()["output"].GetStringValue(),
		Windows: out.GetFields()["windows"].GetStringValue(),
	}
	res.Letters = service.CountLetters(text)
	return res, nil
}

// Catalog fetches the remote component catalog.
func (c *Client) Catalog(ctx context.Context) (service.Catalog, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodCatalog, &emptypb.Empty{}, out); err != nil {
		return service.Catalog{}, err
	}

	var catalog service.Catalog
	for _, v := range out.GetFields()["rotors"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		catalog.Rotors = append(catalog.Rotors, service.RotorInfo{
			ID:     f["id"].GetStringValue(),
			Wiring: f["wiring"].GetStringValue(),
			Notch:  f["notch"].GetStringValue(),
		})
	}
	for _, v := range out.GetFields()["reflectors"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		catalog.Reflectors = append(catalog.Reflectors, service.ReflectorInfo{
			ID:     f["id"].GetStringValue(),
			Wiring: f["wiring"].GetStringValue(),
		})
	}
	return catalog, nil
}

// RunRecipe runs text through a recipe stored on the server.
func (c *Client) RunRecipe(ctx context.Context, name, text string) (string, error) {
	msg, err := structpb.NewStruct(map[string]interface{}{"recipe": name, "text": text})
	if err != nil {
		return "", err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodRunRecipe, msg, out); err != nil {
		return "", err
	}
	return out.GetFields()["output"].GetStringValue(), nil
}

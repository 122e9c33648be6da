package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "decisiontree.v1.DecisionService"

// DecisionServiceServer is the server API for the decision service.
// Every message is a google.protobuf.Struct.
type DecisionServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTrees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTree(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AppendChild(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(DecisionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// DecisionServiceDesc describes the service for grpc.Server.RegisterService.
var DecisionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DecisionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler("Evaluate", DecisionServiceServer.Evaluate)},
		{MethodName: "PutTree", Handler: unaryHandler("PutTree", DecisionServiceServer.PutTree)},
		{MethodName: "GetTree", Handler: unaryHandler("GetTree", DecisionServiceServer.GetTree)},
		{MethodName: "ListTrees", Handler: unaryHandler("ListTrees", DecisionServiceServer.ListTrees)},
		{MethodName: "DeleteTree", Handler: unaryHandler("DeleteTree", DecisionServiceServer.DeleteTree)},
		{MethodName: "AppendChild", Handler: unaryHandler("AppendChild", DecisionServiceServer.AppendChild)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "decisiontree/v1/decision.proto",
}

// RegisterDecisionServiceServer registers srv on s.
func RegisterDecisionServiceServer(s grpc.ServiceRegistrar, srv DecisionServiceServer) {
	s.RegisterService(&DecisionServiceDesc, srv)
}

func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DecisionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DecisionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls the decision service over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method ("Evaluate", "PutTree", ...) with req.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := newStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// GRPCHandler implements DecisionServiceServer on top of Service.
type GRPCHandler struct {
	svc *Service
}

var _ DecisionServiceServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates the transport adapter for svc.
func NewGRPCHandler(svc *Service) (*GRPCHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	return &GRPCHandler{svc: svc}, nil
}

// Evaluate handles {tree, record} and answers {matched, fallback, value}.
func (h *GRPCHandler) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "tree")
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := h.svc.Evaluate(ctx, name, req.GetFields()["record"].AsInterface())
	if err != nil {
		return nil, toStatus(err)
	}

	return respond(map[string]any{
		"matched":  res.Matched,
		"fallback": res.Fallback,
		"value":    res.Value,
	})
}

// PutTree handles {name, definition} and answers {tree_id, name}.
func (h *GRPCHandler) PutTree(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, toStatus(err)
	}
	var def types.TreeDefinition
	if err := decodeField(req, "definition", &def); err != nil {
		return nil, toStatus(err)
	}

	rec, err := h.svc.PutTree(ctx, name, def)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{"tree_id": string(rec.ID), "name": rec.Name})
}

// GetTree handles {name} and answers the stored record with its definition.
func (h *GRPCHandler) GetTree(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, toStatus(err)
	}

	rec, t, err := h.svc.GetTree(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}

	out := summary(rec)
	out["definition"] = t.Definition()
	return respond(out)
}

// ListTrees answers {trees: [...]} without definitions.
func (h *GRPCHandler) ListTrees(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	recs, err := h.svc.ListTrees(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	trees := make([]any, 0, len(recs))
	for _, rec := range recs {
		trees = append(trees, summary(rec))
	}
	return respond(map[string]any{"trees": trees})
}

// DeleteTree handles {name}.
func (h *GRPCHandler) DeleteTree(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, toStatus(err)
	}
	if err := h.svc.DeleteTree(ctx, name); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// AppendChild handles {tree, node} and answers the updated {definition}.
func (h *GRPCHandler) AppendChild(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "tree")
	if err != nil {
		return nil, toStatus(err)
	}
	var node types.NodeDefinition
	if err := decodeField(req, "node", &node); err != nil {
		return nil, toStatus(err)
	}

	def, err := h.svc.AppendChild(ctx, name, node)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{"definition": def})
}

func summary(rec db.TreeRecord) map[string]any {
	return map[string]any{
		"tree_id":    string(rec.ID),
		"name":       rec.Name,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func stringField(req *structpb.Struct, key string) (string, error) {
	s, ok := req.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", errInvalidRequest, key)
	}
	return s.StringValue, nil
}

// decodeField converts one Struct field into dest through its JSON form,
// so definitions decode exactly as they do from files.
func decodeField(req *structpb.Struct, key string, dest any) error {
	v, ok := req.GetFields()[key]
	if !ok {
		return fmt.Errorf("%w: %q is required", errInvalidRequest, key)
	}
	data, err := protojson.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", errInvalidRequest, key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %q: %v", errInvalidRequest, key, err)
	}
	return nil
}

// newStruct converts any JSON-encodable map into a Struct.
func newStruct(m map[string]any) (*structpb.Struct, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func respond(m map[string]any) (*structpb.Struct, error) {
	out, err := newStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

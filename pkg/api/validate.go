package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateAddEdgeRequestXOR, addEdgeRequest{})
	return v
}

// addEdgeRequest is the POST /addEdge body. Exactly one of ToNode and
// ToNodeRemote must be set, matching graphengine.CreateEdge's contract.
type addEdgeRequest struct {
	FromNode     uint32               `json:"from_node" validate:"required"`
	ToNode       *uint32              `json:"to_node,omitempty"`
	ToNodeRemote *string              `json:"to_node_remote,omitempty"`
	Props        map[string]wireValue `json:"props,omitempty" validate:"omitempty,dive"`
	RemoteProps  map[string]wireValue `json:"remote_props,omitempty" validate:"omitempty,dive"`
}

func validateAddEdgeRequestXOR(sl validator.StructLevel) {
	req := sl.Current().Interface().(addEdgeRequest)
	if (req.ToNode == nil) == (req.ToNodeRemote == nil) {
		sl.ReportError(req.ToNode, "ToNode", "to_node", "xor_to_node_remote", "")
	}
}

// addNodeRequest is the POST /addNode body.
type addNodeRequest struct {
	Props map[string]wireValue `json:"props,omitempty" validate:"omitempty,dive"`
}

// updateNodeRequest is the POST /updateNode body.
type updateNodeRequest struct {
	NodeID uint32               `json:"node_id" validate:"required"`
	Props  map[string]wireValue `json:"props,omitempty" validate:"omitempty,dive"`
}

func decodeAndValidate[T any](body []byte) (*T, error) {
	var req T
	if err := decodeJSON(body, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	return &req, nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", e.Field())
		case "xor_to_node_remote":
			return errors.New("addEdge requires exactly one of to_node or to_node_remote")
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}

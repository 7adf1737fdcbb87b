package mapping

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type Order struct {
	ID           int
	StatusID     int
	Status       string
	CustomerID   string
	CustomerName string
	TagIDs       string
	Tags         []string
	Lines        []*Line
	Shipment     *Shipment
}

type Line struct {
	ProductID   string
	ProductName string
}

type Shipment struct {
	CarrierID string
	Carrier   string
}

const ordersYAML = `
containers:
  - namespace: status
    data:
      "1": active
      "2": blocked
  - namespace: customers
    data:
      c7: {Name: Ann}
  - namespace: tags
    data:
      a: red
      b: blue
  - namespace: products
    data:
      p1: {Title: Pen}
  - namespace: carriers
    data:
      dhl: DHL Express
types:
  - type: mapping.Order
    assemble:
      - key: StatusID
        container: status
        groups: status
        props: Status
      - key: CustomerID
        container: customers
        props:
          - Name: CustomerName
      - key: TagIDs
        container: tags
        handler: many-to-many
        separator: ";"
        props: Tags
    disassemble:
      - key: Lines
        groups: nested
      - key: Shipment
        type: mapping.Shipment
  - type: mapping.Line
    assemble:
      - key: ProductID
        container: products
        groups: nested
        props: {src: Title, ref: ProductName}
  - type: mapping.Shipment
    assemble:
      - key: CarrierID
        container: carriers
        props: Carrier
`

func testTypes(t *testing.T) *TypeRegistry {
	t.Helper()

	types := NewTypeRegistry()
	require.NoError(t, types.RegisterValues(Order{}, Line{}, &Shipment{}))

	return types
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

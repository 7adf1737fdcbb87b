package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-assembler/internal/container"
	"field-assembler/internal/executor"
	"field-assembler/internal/handler"
	"field-assembler/internal/operation"
	"field-assembler/internal/strategy"
)

func parseOrders(t *testing.T) (*File, *operation.Catalog) {
	t.Helper()

	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	p, err := NewParser(testTypes(t), f)
	require.NoError(t, err)

	return f, operation.NewCatalog(p)
}

func TestParser_BuildsOperations(t *testing.T) {
	_, catalog := parseOrders(t)

	ops, err := catalog.Resolve(typeOf[Order]())
	require.NoError(t, err)

	as := ops.AssembleOperations()
	require.Len(t, as, 3)

	assert.Equal(t, "StatusID", as[0].Key())
	assert.Equal(t, "status", as[0].Namespace())
	assert.Equal(t, []string{"status"}, as[0].Groups())
	assert.Equal(t, []operation.Mapping{{Reference: "Status"}}, as[0].Mappings())
	assert.Equal(t, handler.OneToOne, as[0].Handler())
	assert.Equal(t, strategy.Default, as[0].Strategy())

	assert.Equal(t, []operation.Mapping{{Source: "Name", Reference: "CustomerName"}}, as[1].Mappings())

	m2m, ok := as[2].Handler().(*handler.ManyToManyHandler)
	require.True(t, ok)
	assert.Equal(t, ";", m2m.Separator)

	ds := ops.DisassembleOperations()
	require.Len(t, ds, 2)
	assert.Equal(t, "Lines", ds[0].Key())
	assert.Equal(t, typeOf[Order](), ds[0].SourceType())

	nested, err := ds[1].InternalBeanOperations(nil)
	require.NoError(t, err)
	assert.Equal(t, typeOf[Shipment](), nested.Type())
}

func TestParser_UnknownTypeIsEmpty(t *testing.T) {
	_, catalog := parseOrders(t)

	ops, err := catalog.Resolve(typeOf[struct{ A int }]())
	require.NoError(t, err)
	assert.True(t, ops.IsEmpty())
}

func TestNewParser_RejectsInvalid(t *testing.T) {
	f, err := Parse([]byte("types:\n  - type: mapping.Order\n    assemble:\n      - key: Nope\n"))
	require.NoError(t, err)

	_, err = NewParser(testTypes(t), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_key_path")
}

func TestParser_EndToEnd(t *testing.T) {
	f, catalog := parseOrders(t)

	registry := container.NewRegistry()
	for _, c := range Containers(f) {
		registry.Register(c)
	}

	orders := []*Order{
		{
			ID: 1, StatusID: 1, CustomerID: "c7", TagIDs: "a;b",
			Lines:    []*Line{{ProductID: "p1"}, {ProductID: "p2"}},
			Shipment: &Shipment{CarrierID: "dhl"},
		},
		{ID: 2, StatusID: 2, CustomerID: "c9"},
	}

	tpl := executor.NewTemplate(catalog, executor.NewUnordered(registry))
	require.NoError(t, tpl.Execute(context.Background(), orders))

	assert.Equal(t, "active", orders[0].Status)
	assert.Equal(t, "Ann", orders[0].CustomerName)
	assert.Equal(t, []string{"red", "blue"}, orders[0].Tags)
	assert.Equal(t, "Pen", orders[0].Lines[0].ProductName)
	assert.Empty(t, orders[0].Lines[1].ProductName)
	assert.Equal(t, "DHL Express", orders[0].Shipment.Carrier)

	assert.Equal(t, "blocked", orders[1].Status)
	assert.Empty(t, orders[1].CustomerName)
	assert.Nil(t, orders[1].Tags)
}

func TestParser_GroupFilter(t *testing.T) {
	f, catalog := parseOrders(t)

	registry := container.NewRegistry()
	for _, c := range Containers(f) {
		registry.Register(c)
	}

	order := &Order{StatusID: 1, CustomerID: "c7", Lines: []*Line{{ProductID: "p1"}}}

	tpl := executor.NewTemplate(catalog, executor.NewOrdered(registry))
	require.NoError(t, tpl.ExecuteIfMatchAnyGroups(context.Background(), order, "status"))

	assert.Equal(t, "active", order.Status)
	assert.Empty(t, order.CustomerName)
	assert.Empty(t, order.Lines[0].ProductName)
}

func TestTypeRegistry(t *testing.T) {
	types := testTypes(t)

	got, ok := types.Lookup("mapping.Order")
	require.True(t, ok)
	assert.Equal(t, typeOf[Order](), got)

	got, ok = types.Lookup("field-assembler/internal/mapping.Shipment")
	require.True(t, ok)
	assert.Equal(t, typeOf[Shipment](), got)

	_, ok = types.Lookup("mapping.Nope")
	assert.False(t, ok)

	require.NoError(t, types.Register("mapping.Order", typeOf[*Order]()))
	require.Error(t, types.Register("mapping.Order", typeOf[Line]()))

	assert.Equal(t, []string{"mapping.Line", "mapping.Order", "mapping.Shipment"}, types.Names())
}

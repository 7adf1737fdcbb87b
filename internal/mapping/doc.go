// Package mapping loads YAML descriptor files declaring containers and the
// operations of Go types, validates them, and parses them into
// operation.BeanOperations.
//
// Descriptor files take the place of annotations: a type is named in the
// file and bound to a Go type through a TypeRegistry.
//
// # Schema Overview
//
//	version: "1"
//	containers:
//	  - namespace: status
//	    data:
//	      "1": active
//	      "2": blocked
//	types:
//	  - type: orders.Order
//	    assemble:
//	      - key: StatusID
//	        container: status
//	        groups: [status]
//	        props: Status                  # whole value into Status
//	      - key: CustomerID
//	        container: customers
//	        sort: 1
//	        strategy: overwrite
//	        props:
//	          - {src: Name, ref: CustomerName}
//	          - Email: CustomerEmail       # src: ref shorthand
//	      - key: TagIDs
//	        container: tags
//	        handler: many-to-many
//	        separator: ";"
//	        props: Tags
//	    disassemble:
//	      - key: Lines                     # runtime type of each element
//	        groups: nested
//	      - key: Shipment
//	        type: orders.Shipment          # fixed nested type
//
// # Defaults
//
//   - handler: one-to-one
//   - strategy: overwrite-not-null
//   - props: empty, meaning the whole value is written back into the key property
//   - disassemble type: empty, meaning the runtime type of each nested instance
package mapping

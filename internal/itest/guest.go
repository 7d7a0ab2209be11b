package itest

// GuestModule returns a minimal wasm module that imports invoke from
// module and re-exports it as "call", together with one page of memory
// exported as "memory". It stands in for a compiled guest.
func GuestModule(module string) []byte {
	if len(module) == 0 || len(module) > 100 {
		panic("itest: guest import module name length out of range")
	}
	imports := []byte{0x01} // one import
	imports = append(imports, byte(len(module)))
	imports = append(imports, module...)
	imports = append(imports, 0x06, 'i', 'n', 'v', 'o', 'k', 'e')
	imports = append(imports, 0x00, 0x00) // func of type 0

	b := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x01, 0x09, 0x01, 0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f, // type: (i32 i32 i32 i32) -> i32
	}
	b = append(b, 0x02, byte(len(imports)))
	b = append(b, imports...)
	b = append(b,
		0x03, 0x02, 0x01, 0x00, // func section: 1 func of type 0
		0x05, 0x03, 0x01, 0x00, 0x01, // memory: min 1 page
		0x07, 0x11, 0x02, // export section: 2 exports
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x04, 'c', 'a', 'l', 'l', 0x00, 0x01, // "call" -> func 1
		0x0a, 0x0e, 0x01, 0x0c, 0x00, // code: 1 body, no locals
		0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0x20, 0x03, // local.get 0..3
		0x10, 0x00, // call 0
		0x0b, // end
	)
	return b
}

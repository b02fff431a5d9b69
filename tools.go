//go:build tools

package tools

// Mocks under pkg/*/mocks are generated by the mockery v3 binary using
// .mockery.yaml at the module root. Run: mockery

// Package appliance holds the per-device-type service registry: the
// tables that map human command names and raw service bytes to typed,
// unit-aware state values.
//
// Each supported device kind (dehumidifier, air conditioner) contributes
// one DeviceProfile, an ordered list of service descriptors with either
// a scale factor and unit or an enumeration table. The registry is built
// once at startup and is immutable afterwards; lookups branch through
// the type-id-keyed table rather than type switches.
package appliance

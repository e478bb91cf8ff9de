package appliance

// Air conditioner service ids.
const (
	ACPower          byte = 0x00
	ACOpMode         byte = 0x01
	ACFanSpeed       byte = 0x02
	ACTemperatureCfg byte = 0x03
	ACTemperatureNow byte = 0x04
	ACSleepTimer     byte = 0x05
)

func newAirConditionerProfile() *DeviceProfile {
	return newProfile(TypeAirConditioner, "air_conditioner", []ServiceDescriptor{
		{
			ID: ACPower, Name: "power", Writable: true,
			Enum: map[uint16]string{0: "off", 1: "on"},
		},
		{
			ID: ACOpMode, Name: "op_mode", Writable: true,
			Enum: map[uint16]string{
				0: "cool",
				1: "dry",
				2: "fan_only",
				3: "auto",
				4: "heat",
			},
		},
		{
			ID: ACFanSpeed, Name: "fan_speed", Writable: true,
			Enum: map[uint16]string{0: "auto", 1: "low", 2: "medium", 3: "high"},
		},
		{
			ID: ACTemperatureCfg, Name: "temperature_cfg", Writable: true,
			Unit: "celsius", Min: 16, Max: 32,
		},
		{
			ID: ACTemperatureNow, Name: "temperature_current",
			Unit: "celsius", Scale: 0.1, Min: 0, Max: 500,
		},
		{
			ID: ACSleepTimer, Name: "sleep_timer", Writable: true,
			Unit: "hour", Min: 0, Max: 12,
		},
	})
}

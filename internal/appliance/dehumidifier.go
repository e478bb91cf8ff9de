package appliance

// Dehumidifier service ids.
const (
	DehumPower       byte = 0x00
	DehumOpMode      byte = 0x01
	DehumOpTimer     byte = 0x02
	DehumHumidityCfg byte = 0x03
	DehumLevel       byte = 0x04
	DehumHumidityNow byte = 0x07
	DehumTemperature byte = 0x08
	DehumWaterFull   byte = 0x0A
)

func newDehumidifierProfile() *DeviceProfile {
	return newProfile(TypeDehumidifier, "dehumidifier", []ServiceDescriptor{
		{
			ID: DehumPower, Name: "power", Writable: true,
			Enum: map[uint16]string{0: "off", 1: "on"},
		},
		{
			ID: DehumOpMode, Name: "op_mode", Writable: true,
			Enum: map[uint16]string{
				0: "auto",
				1: "dehumidify",
				2: "dry_clothes",
				3: "purify",
				4: "fan_only",
			},
		},
		{
			ID: DehumOpTimer, Name: "op_timer", Writable: true,
			Unit: "hour", Min: 0, Max: 24,
		},
		{
			ID: DehumHumidityCfg, Name: "humidity_cfg", Writable: true,
			Unit: "%", Min: 40, Max: 70,
		},
		{
			ID: DehumLevel, Name: "dehumidifier_level", Writable: true,
			Unit: "level", Min: 1, Max: 5,
		},
		{
			ID: DehumHumidityNow, Name: "humidity_current",
			Unit: "%", Min: 0, Max: 100,
		},
		{
			ID: DehumTemperature, Name: "temperature_current",
			Unit: "celsius", Scale: 0.1, Min: 0, Max: 650,
		},
		{
			ID: DehumWaterFull, Name: "water_full_alarm",
			Enum: map[uint16]string{0: "normal", 1: "full"},
		},
	})
}

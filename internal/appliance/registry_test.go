package appliance

import (
	"errors"
	"testing"

	"github.com/muurk/sabridge/internal/protocol"
)

func TestProfileLookup(t *testing.T) {
	r := NewRegistry()

	for _, typeID := range []byte{TypeDehumidifier, TypeAirConditioner} {
		p, err := r.Profile(typeID)
		if err != nil {
			t.Fatalf("Profile(0x%02x) error = %v", typeID, err)
		}
		if p.TypeID != typeID {
			t.Errorf("Profile(0x%02x).TypeID = 0x%02x", typeID, p.TypeID)
		}
		if len(p.Services) == 0 {
			t.Errorf("Profile(0x%02x) has no services", typeID)
		}
	}

	if _, err := r.Profile(0x77); !errors.Is(err, ErrUnsupportedDeviceType) {
		t.Errorf("Profile(0x77) error = %v, want ErrUnsupportedDeviceType", err)
	}
}

func TestTranslateCommandName(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		typeID  byte
		cmd     string
		want    byte
		wantErr error
	}{
		{name: "lowercase", typeID: TypeDehumidifier, cmd: "power", want: DehumPower},
		{name: "uppercase", typeID: TypeDehumidifier, cmd: "POWER", want: DehumPower},
		{name: "mixed case", typeID: TypeAirConditioner, cmd: "Fan_Speed", want: ACFanSpeed},
		{name: "outside profile", typeID: TypeDehumidifier, cmd: "fan_speed", wantErr: ErrUnknownCommand},
		{name: "unsupported type", typeID: 0x77, cmd: "power", wantErr: ErrUnsupportedDeviceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := r.TranslateCommandName(tt.typeID, tt.cmd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("TranslateCommandName() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TranslateCommandName() error = %v", err)
			}
			if id != tt.want {
				t.Errorf("TranslateCommandName() = 0x%02x, want 0x%02x", id, tt.want)
			}
		})
	}
}

func TestDecodeServiceValue(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name      string
		typeID    byte
		serviceID byte
		raw       uint16
		wantValue any
		wantUnit  string
		wantErr   error
	}{
		{
			name: "enum mapping", typeID: TypeDehumidifier, serviceID: DehumPower,
			raw: 1, wantValue: "on",
		},
		{
			name: "scalar with unit", typeID: TypeDehumidifier, serviceID: DehumHumidityNow,
			raw: 55, wantValue: 55, wantUnit: "%",
		},
		{
			name: "scaled value", typeID: TypeAirConditioner, serviceID: ACTemperatureNow,
			raw: 235, wantValue: 23.5, wantUnit: "celsius",
		},
		{
			name: "enum key outside table", typeID: TypeDehumidifier, serviceID: DehumPower,
			raw: 9, wantErr: ErrValueOutOfRange,
		},
		{
			name: "scalar below domain", typeID: TypeDehumidifier, serviceID: DehumHumidityCfg,
			raw: 10, wantErr: ErrValueOutOfRange,
		},
		{
			name: "scalar above domain", typeID: TypeAirConditioner, serviceID: ACTemperatureCfg,
			raw: 40, wantErr: ErrValueOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := r.DecodeServiceValue(tt.typeID, tt.serviceID, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeServiceValue() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeServiceValue() error = %v", err)
			}
			if report.Value != tt.wantValue {
				t.Errorf("Value = %v (%T), want %v (%T)",
					report.Value, report.Value, tt.wantValue, tt.wantValue)
			}
			if report.Unit != tt.wantUnit {
				t.Errorf("Unit = %q, want %q", report.Unit, tt.wantUnit)
			}
			if report.Description == "" {
				t.Error("Description is empty")
			}
		})
	}
}

func TestDecodeAllStates(t *testing.T) {
	r := NewRegistry()

	data := []byte{
		DehumPower, 0x00, 0x01, // on
		DehumHumidityCfg, 0x00, 0x32, // 50%
		DehumHumidityNow, 0x00, 0x41, // 65%
	}
	reports, err := r.DecodeAllStates(TypeDehumidifier, data)
	if err != nil {
		t.Fatalf("DecodeAllStates() error = %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	if reports[0].Value != "on" {
		t.Errorf("reports[0].Value = %v, want on", reports[0].Value)
	}
	if reports[1].Value != 50 || reports[2].Value != 65 {
		t.Errorf("scalar reports = %v / %v, want 50 / 65", reports[1].Value, reports[2].Value)
	}
	// Stream order is preserved.
	if reports[1].Description != "humidity_cfg" || reports[2].Description != "humidity_current" {
		t.Errorf("report order = %q, %q", reports[1].Description, reports[2].Description)
	}
}

func TestDecodeAllStatesRejectsRaggedBlock(t *testing.T) {
	r := NewRegistry()

	for _, n := range []int{1, 2, 4, 5, 7} {
		data := make([]byte, n)
		if _, err := r.DecodeAllStates(TypeDehumidifier, data); !errors.Is(err, protocol.ErrMalformedStatesBlock) {
			t.Errorf("DecodeAllStates(%d bytes) error = %v, want ErrMalformedStatesBlock", n, err)
		}
	}
}

func TestHelps(t *testing.T) {
	r := NewRegistry()
	p, err := r.Profile(TypeAirConditioner)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	helps := p.Helps()
	if len(helps) != len(p.Services) {
		t.Fatalf("got %d helps, want %d", len(helps), len(p.Services))
	}
	if helps[0].Name != "power" || !helps[0].Writable {
		t.Errorf("helps[0] = %+v, want writable power", helps[0])
	}
	if len(helps[0].Choices) != 2 {
		t.Errorf("power choices = %v, want [off on]", helps[0].Choices)
	}
}

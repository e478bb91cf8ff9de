// Package serialport opens and configures the appliance's serial
// channel. The bridge core only sees an io.ReadWriteCloser; baud,
// parity and stop bit selection live here.
package serialport

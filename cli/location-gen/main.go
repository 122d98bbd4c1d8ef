package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/daniil11ru/geotrack/cli/tracker/config"
	"github.com/daniil11ru/geotrack/libs/broker"
	"github.com/daniil11ru/geotrack/libs/codec"
	"github.com/daniil11ru/geotrack/libs/geo"
)

/*
Location generator.

Утилита публикует одну координату в топик трекера, используя брокер и кодек
из конфига трекера.

Usage:
  -c string
    	Путь до конфига трекера (обязательно)
  -lat float
    	Широта (обязательно)
  -lon float
    	Долгота (обязательно)
  -topic string
    	Топик, по умолчанию из конфига

Example

```
./location-gen -c configs/config.yaml -lat 40.7128 -lon -74.0060
```
*/

type options struct {
	configPath string
	latitude   float64
	longitude  float64
	topic      string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.configPath, "c", "", "Путь до конфига трекера (обязательно)")
	fs.Float64Var(&o.latitude, "lat", 0, "Широта (обязательно)")
	fs.Float64Var(&o.longitude, "lon", 0, "Долгота (обязательно)")
	fs.StringVar(&o.topic, "topic", "", "Топик, по умолчанию из конфига")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if o.configPath == "" {
		return o, fmt.Errorf("требуется путь до конфига, смотрите помощь (-h)")
	}
	if !set["lat"] || !set["lon"] {
		return o, fmt.Errorf("требуются широта и долгота, смотрите помощь (-h)")
	}
	return o, nil
}

func publish(o options, settings config.Settings) (geo.Coordinate, error) {
	position := geo.NewCoordinate(o.latitude, o.longitude)

	c, err := codec.ByName(settings.Codec)
	if err != nil {
		return position, err
	}
	payload, err := c.Encode(position)
	if err != nil {
		return position, fmt.Errorf("ошибка кодирования сообщения: %w", err)
	}

	b, err := broker.Load(settings.Broker)
	if err != nil {
		return position, err
	}
	defer b.Close()

	topic := o.topic
	if topic == "" {
		topic = settings.Topic
	}
	if err = b.Publish(topic, payload); err != nil {
		return position, fmt.Errorf("ошибка отправки в %s: %w", topic, err)
	}
	return position, nil
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	settings, err := config.New(o.configPath)
	if err != nil {
		fmt.Println("Ошибка чтения конфига: ", err)
		os.Exit(1)
	}

	position, err := publish(o, settings)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Координата %v отправлена\n", position)
	os.Exit(0)
}

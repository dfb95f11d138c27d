package cron

import (
	"testing"
)

func TestRegistry_Register_Jobs(t *testing.T) {
	ran := false
	Register("testregistryjob", "@every 1h", func(args ...string) {
		ran = true
	})
	defer Unregister("testregistryjob")

	jobs := Jobs()
	j, ok := jobs["testregistryjob"]
	if !ok {
		t.Fatal("testregistryjob not in Jobs()")
	}
	if j.Schedule != "@every 1h" {
		t.Errorf("Schedule = %q, want @every 1h", j.Schedule)
	}
	j.Run()
	if !ran {
		t.Error("Run did not execute")
	}
}

func TestRegistry_Register_DuplicatePanics(t *testing.T) {
	Register("dupjob", "@hourly", func(...string) {})
	defer Unregister("dupjob")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate")
		}
	}()
	Register("dupjob", "@daily", func(...string) {})
}

func TestRegistry_ManualJobNotScheduled(t *testing.T) {
	ran := 0
	Register("manualjob", "", func(...string) { ran++ })
	defer Unregister("manualjob")
	Register("scheduledjob", "@every 1h", func(...string) {})
	defer Unregister("scheduledjob")

	c, err := NewScheduler()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(c.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	if !Run("manualjob") || ran != 1 {
		t.Errorf("Run(manualjob) ran = %d", ran)
	}
	if Run("missingjob") {
		t.Error("Run(missingjob) = true")
	}
}

func TestNewScheduler_BadSchedule(t *testing.T) {
	Register("badjob", "not a schedule", func(...string) {})
	defer Unregister("badjob")
	if _, err := NewScheduler(); err == nil {
		t.Error("want error for invalid schedule")
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "facecam")
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("cam"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "cam")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "facecam")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recognition requests are recorded", func() {
			manager.RecordRecognition(OutcomeOK, 12)
			manager.RecordRecognition(OutcomeOK, 15)
			manager.RecordRecognition(OutcomeTransportError, 3)

			Convey("Then counts are kept per outcome", func() {
				So(testutil.ToFloat64(manager.recognitionRequests.WithLabelValues(OutcomeOK)), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.recognitionRequests.WithLabelValues(OutcomeTransportError)), ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			manager.UpdateCameraActive(true)
			manager.UpdateKnownFaces(4)
			manager.UpdateFacesInFrame(2)

			Convey("Then the gauges reflect the last value", func() {
				So(testutil.ToFloat64(manager.cameraActive), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.knownFaces), ShouldEqual, 4)
				So(testutil.ToFloat64(manager.facesInFrame), ShouldEqual, 2)
			})

			manager.UpdateCameraActive(false)
			So(testutil.ToFloat64(manager.cameraActive), ShouldEqual, 0)
		})

		Convey("When faces are labeled", func() {
			manager.RecordFaceLabeled(true)
			manager.RecordFaceLabeled(false)
			manager.RecordFaceLabeled(false)

			Convey("Then known and unknown are split", func() {
				So(testutil.ToFloat64(manager.facesLabeled.WithLabelValues("known")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.facesLabeled.WithLabelValues("unknown")), ShouldEqual, 2)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers should not panic", func() {
			So(func() {
				RecordRecognition(OutcomeRemoteError, 20)
				RecordSchedulerDecision("busy")
				RecordCyclePanic()
				UpdateFacesInFrame(1)
				RecordFaceLabeled(true)
				UpdateCameraActive(true)
				RecordFrameCaptured()
				UpdateKnownFaces(3)
				RecordRegistryOp("list", OutcomeOK)
				RecordUploadSize(2048)
				RecordHTTPRequest("status", "GET", "200", 1.5)
				RecordError("camera", "permission")
			}, ShouldNotPanic)
		})

		Convey("Then the registry gathers facecam metrics", func() {
			RecordFrameCaptured()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["facecam_client_frames_captured_total"], ShouldBeTrue)
		})
	})
}

package catalog

// itemSchema is the JSON schema every item asset document must satisfy.
const itemSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "additionalProperties": false,
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code", "capacity", "shape"],
        "additionalProperties": false,
        "properties": {
          "code":        {"type": "string", "minLength": 1},
          "id":          {"type": "integer", "minimum": 1},
          "name":        {"type": "string"},
          "category":    {"type": "string"},
          "description": {"type": "string"},
          "icon":        {"type": "string"},
          "capacity":    {"type": "integer", "minimum": 1},
          "shape": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "width":  {"type": "integer", "minimum": 1},
              "height": {"type": "integer", "minimum": 1},
              "cells": {
                "type": "array",
                "minItems": 1,
                "items": {"$ref": "#/definitions/cell"}
              },
              "handle": {"$ref": "#/definitions/cell"}
            },
            "anyOf": [
              {"required": ["cells"]},
              {"required": ["width", "height"]}
            ]
          }
        }
      }
    }
  },
  "definitions": {
    "cell": {
      "type": "object",
      "required": ["x", "y"],
      "additionalProperties": false,
      "properties": {
        "x": {"type": "integer"},
        "y": {"type": "integer"}
      }
    }
  }
}`
